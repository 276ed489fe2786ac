// Package demodata provides sample data for demo deployments.
package demodata

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"winsbygroup.com/tracker/internal/auth"
	"winsbygroup.com/tracker/internal/customer"
	"winsbygroup.com/tracker/internal/project"
	"winsbygroup.com/tracker/internal/user"
)

// Demo account credentials.
const (
	Email    = "kfir@zvi.com"
	Password = "123"
)

// Load wipes every user (and by cascade their customers, projects and
// sessions) and inserts the demo account with one customer and one project.
// Everything happens in a single transaction.
func Load(ctx context.Context, db *sqlx.DB) error {
	hash, err := auth.HashPassword(Password)
	if err != nil {
		return err
	}

	users := user.New(db)
	customers := customer.New(db)
	projects := project.New(db)

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := users.DeleteAll(ctx, tx); err != nil {
		return fmt.Errorf("wipe users: %w", err)
	}

	userID, err := users.Create(ctx, tx, &user.User{
		Email:        Email,
		PasswordHash: hash,
		FirstName:    "כפיר",
		LastName:     "צבי",
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	customerID, err := customers.Create(ctx, tx, &customer.Customer{
		UserID:    userID,
		FirstName: "שמחה",
		LastName:  "גורה",
		Email:     "simha@gora.com",
		Phone:     "0501231234",
		Address:   "זהירות בדרכים 34/5, חגור",
	})
	if err != nil {
		return fmt.Errorf("create customer: %w", err)
	}

	if _, err := projects.Create(ctx, tx, sampleProject(customerID, time.Now().UTC())); err != nil {
		return fmt.Errorf("create project: %w", err)
	}

	return tx.Commit()
}

func sampleProject(customerID string, now time.Time) *project.Project {
	end := now.Add(7 * 24 * time.Hour)
	tasks := func() []project.Task {
		return []project.Task{
			{Title: "משימה #1", Completed: false},
			{Title: "משימה #2", Completed: true},
			{Title: "משימה #3", Completed: false},
		}
	}

	return &project.Project{
		CustomerID: customerID,
		Name:       "מאווי",
		Dog: project.Dog{
			Diagnosis:               "כלב מפלצת",
			Accessories:             "בובות מפוחלצות של סנאים",
			EnvironmentalManagement: "גדר שיותר גבוהה ממה שהוא יכול לקפוץ",
			Summary:                 "מותק של כלב",
		},
		Notes: []project.Note{},
		Goals: []project.Goal{
			{
				Title:       "פקודת שב",
				Description: "להצליח לגרום לכלב לשבת בפקודה",
				StartTime:   &now,
				EndTime:     &end,
				Tasks:       tasks(),
			},
			{
				Title:       "הרגלה לצרכים",
				Description: "להצליח לגרום לכלב לעשות צרכים רק מחוץ לבית",
				StartTime:   &now,
				EndTime:     &end,
				Tasks:       tasks(),
			},
		},
	}
}
