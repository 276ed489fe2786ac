package version

import (
	"fmt"
	"strconv"
	"time"
)

// Version is the application version. Can be overridden at build time via:
//
//	go build -ldflags "-X winsbygroup.com/tracker/internal/version.Version=1.2.3"
var Version = "1.0"

// Banner returns the startup banner.
func Banner() string {
	y := strconv.Itoa(time.Now().Year())
	copyright := "Copyright 2025-" + y + " Winsby Group LLC. All rights reserved."

	return fmt.Sprintf("%s\nCustomers Tracker (v%s)\n%s\n", product(), Version, copyright)
}

func product() string {
	// http://patorjk.com/software/taag/#p=display&f=Standard&t=Tracker
	const s = `
  _____               _
 |_   _| __ __ _  ___| | _____ _ __
   | || '__/ _' |/ __| |/ / _ \ '__|
   | || | | (_| | (__|   <  __/ |
   |_||_|  \__,_|\___|_|\_\___|_|
`
	return s
}
