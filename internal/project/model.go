package project

import (
	"time"

	"winsbygroup.com/tracker/internal/customer"
)

// Dog is the free-form profile of the dog a project is about.
type Dog struct {
	Diagnosis               string
	Accessories             string
	EnvironmentalManagement string
	Summary                 string
}

type Note struct {
	NoteID       string     `db:"note_id"`
	CreationTime *time.Time `db:"creation_time"`
	Description  string     `db:"description"`
}

type Task struct {
	TaskID    string `db:"task_id"`
	GoalID    string `db:"goal_id"`
	Title     string `db:"title"`
	Completed bool   `db:"completed"`
}

type Goal struct {
	GoalID      string     `db:"goal_id"`
	Title       string     `db:"title"`
	Description string     `db:"description"`
	StartTime   *time.Time `db:"start_time"`
	EndTime     *time.Time `db:"end_time"`
	Tasks       []Task     `db:"-"`
}

// Project is a training engagement for one customer's dog. Notes and Goals
// keep the order they were given in.
type Project struct {
	ProjectID  string
	CustomerID string
	Name       string
	Dog        Dog
	Notes      []Note
	Goals      []Goal
}

// Populated is a project with its customer reference resolved.
type Populated struct {
	Project
	Customer *customer.Customer
}

// DogPatch holds the dog fields of a partial update. Nil fields are left unchanged.
type DogPatch struct {
	Diagnosis               *string
	Accessories             *string
	EnvironmentalManagement *string
	Summary                 *string
}

// Patch describes a partial project update. Nil fields are left unchanged;
// a non-nil Notes or Goals replaces the whole list.
type Patch struct {
	Name  *string
	Dog   *DogPatch
	Notes *[]Note
	Goals *[]Goal
}
