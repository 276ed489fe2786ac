package project_test

import (
	"context"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"winsbygroup.com/tracker/internal/project"
	"winsbygroup.com/tracker/internal/testutil"
)

func strPtr(s string) *string { return &s }

func TestProjectCreateAndGet(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	svc := project.NewService(db)

	u := testutil.CreateUser(t, db, "trainer@example.com")
	c := testutil.CreateCustomer(t, db, u.UserID, "Dana")

	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("IST", 2*60*60))
	end := start.Add(7 * 24 * time.Hour)
	noted := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	ids, err := svc.Create(ctx, u.UserID, []project.Project{{
		CustomerID: c.CustomerID,
		Name:       "Rex",
		Dog: project.Dog{
			Diagnosis:   "leash reactive",
			Accessories: "harness",
			Summary:     "sweet",
		},
		Notes: []project.Note{
			{CreationTime: &noted, Description: "first visit"},
			{Description: "no date"},
		},
		Goals: []project.Goal{
			{
				Title:     "sit",
				StartTime: &start,
				EndTime:   &end,
				Tasks: []project.Task{
					{Title: "lure"},
					{Title: "verbal cue", Completed: true},
				},
			},
			{Title: "recall"},
		},
	}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected 1 id, got %d", len(ids))
	}

	p, err := svc.Get(ctx, ids[0])
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	t.Run("populates the customer", func(t *testing.T) {
		if p.Customer == nil || p.Customer.CustomerID != c.CustomerID || p.Customer.FirstName != "Dana" {
			t.Errorf("unexpected customer %+v", p.Customer)
		}
	})

	t.Run("keeps dog fields", func(t *testing.T) {
		want := project.Dog{Diagnosis: "leash reactive", Accessories: "harness", Summary: "sweet"}
		if p.Dog != want {
			t.Errorf("expected dog %+v, got %+v", want, p.Dog)
		}
	})

	t.Run("keeps note order and times", func(t *testing.T) {
		if len(p.Notes) != 2 {
			t.Fatalf("expected 2 notes, got %d", len(p.Notes))
		}
		if p.Notes[0].Description != "first visit" || p.Notes[0].CreationTime == nil || !p.Notes[0].CreationTime.Equal(noted) {
			t.Errorf("unexpected first note %+v", p.Notes[0])
		}
		if p.Notes[1].CreationTime != nil {
			t.Errorf("expected nil creation time, got %v", p.Notes[1].CreationTime)
		}
		if p.Notes[0].NoteID == "" || p.Notes[0].NoteID == p.Notes[1].NoteID {
			t.Error("expected distinct note ids")
		}
	})

	t.Run("keeps goals with their tasks", func(t *testing.T) {
		if len(p.Goals) != 2 || p.Goals[0].Title != "sit" || p.Goals[1].Title != "recall" {
			t.Fatalf("unexpected goals %+v", p.Goals)
		}
		sit := p.Goals[0]
		if sit.StartTime == nil || !sit.StartTime.Equal(start) {
			t.Errorf("expected start %v, got %v", start, sit.StartTime)
		}
		if sit.StartTime.Location() != time.UTC {
			t.Errorf("expected times in UTC, got %v", sit.StartTime.Location())
		}
		if len(sit.Tasks) != 2 || sit.Tasks[0].Title != "lure" || sit.Tasks[0].Completed || !sit.Tasks[1].Completed {
			t.Errorf("unexpected tasks %+v", sit.Tasks)
		}
		if p.Goals[1].Tasks == nil || len(p.Goals[1].Tasks) != 0 {
			t.Errorf("expected empty non-nil tasks, got %#v", p.Goals[1].Tasks)
		}
	})
}

func TestProjectGetUnknown(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := project.NewService(db)

	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, project.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestProjectCreateChecksCustomerOwner(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	svc := project.NewService(db)

	alice := testutil.CreateUser(t, db, "alice@example.com")
	bob := testutil.CreateUser(t, db, "bob@example.com")
	mine := testutil.CreateCustomer(t, db, alice.UserID, "Mine")
	theirs := testutil.CreateCustomer(t, db, bob.UserID, "Theirs")

	tests := []struct {
		name     string
		projects []project.Project
	}{
		{"another user's customer", []project.Project{{CustomerID: theirs.CustomerID, Name: "x"}}},
		{"unknown customer", []project.Project{{CustomerID: "missing", Name: "x"}}},
		{"one bad entry in a batch", []project.Project{
			{CustomerID: mine.CustomerID, Name: "ok"},
			{CustomerID: theirs.CustomerID, Name: "bad"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, alice.UserID, tt.projects)
			if !errors.Is(err, project.ErrCustomerNotFound) {
				t.Errorf("expected ErrCustomerNotFound, got %v", err)
			}

			var n int
			if err := db.Get(&n, `SELECT COUNT(*) FROM project`); err != nil {
				t.Fatalf("count: %v", err)
			}
			if n != 0 {
				t.Errorf("expected nothing stored, got %d projects", n)
			}
		})
	}
}

func TestProjectUpdate(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	svc := project.NewService(db)

	u := testutil.CreateUser(t, db, "trainer@example.com")
	c := testutil.CreateCustomer(t, db, u.UserID, "Dana")
	id := testutil.CreateProject(t, db, u.UserID, project.Project{
		CustomerID: c.CustomerID,
		Name:       "Rex",
		Dog:        project.Dog{Diagnosis: "anxious", Summary: "before"},
		Notes:      []project.Note{{Description: "n1"}},
		Goals: []project.Goal{
			{Title: "sit", Tasks: []project.Task{{Title: "a"}, {Title: "b"}}},
		},
	})

	t.Run("dog summary merges into the stored dog", func(t *testing.T) {
		err := svc.Update(ctx, id, &project.Patch{Dog: &project.DogPatch{Summary: strPtr("after")}})
		if err != nil {
			t.Fatalf("update: %v", err)
		}

		p, _ := svc.Get(ctx, id)
		if p.Dog.Summary != "after" || p.Dog.Diagnosis != "anxious" {
			t.Errorf("unexpected dog %+v", p.Dog)
		}
		if p.Name != "Rex" || len(p.Notes) != 1 || len(p.Goals) != 1 {
			t.Errorf("untouched fields changed: %+v", p.Project)
		}
	})

	t.Run("goals are replaced as a whole", func(t *testing.T) {
		before, _ := svc.Get(ctx, id)
		kept := before.Goals[0]
		kept.Tasks[1].Completed = true

		goals := []project.Goal{kept, {Title: "down"}}
		if err := svc.Update(ctx, id, &project.Patch{Goals: &goals}); err != nil {
			t.Fatalf("update: %v", err)
		}

		p, _ := svc.Get(ctx, id)
		if len(p.Goals) != 2 || p.Goals[1].Title != "down" {
			t.Fatalf("unexpected goals %+v", p.Goals)
		}
		if p.Goals[0].GoalID != kept.GoalID {
			t.Errorf("expected goal id %s to be kept, got %s", kept.GoalID, p.Goals[0].GoalID)
		}
		if !p.Goals[0].Tasks[1].Completed {
			t.Error("expected task b to be completed")
		}

		var tasks int
		db.Get(&tasks, `SELECT COUNT(*) FROM task`)
		if tasks != 2 {
			t.Errorf("expected old tasks to be removed, %d tasks stored", tasks)
		}
	})

	t.Run("empty notes clears the list", func(t *testing.T) {
		empty := []project.Note{}
		if err := svc.Update(ctx, id, &project.Patch{Notes: &empty}); err != nil {
			t.Fatalf("update: %v", err)
		}
		p, _ := svc.Get(ctx, id)
		if len(p.Notes) != 0 {
			t.Errorf("expected no notes, got %+v", p.Notes)
		}
	})

	t.Run("unknown project", func(t *testing.T) {
		err := svc.Update(ctx, "missing", &project.Patch{Name: strPtr("x")})
		if !errors.Is(err, project.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestProjectOwnerOf(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	svc := project.NewService(db)

	u := testutil.CreateUser(t, db, "trainer@example.com")
	c := testutil.CreateCustomer(t, db, u.UserID, "Dana")
	id := testutil.CreateProject(t, db, u.UserID, project.Project{CustomerID: c.CustomerID, Name: "Rex"})

	owner, found, err := svc.OwnerOf(ctx, id)
	if err != nil || !found || owner != u.UserID {
		t.Errorf("expected owner %s, got %q found=%v err=%v", u.UserID, owner, found, err)
	}

	_, found, err = svc.OwnerOf(ctx, "missing")
	if err != nil || found {
		t.Errorf("expected not found without error, got found=%v err=%v", found, err)
	}
}

func TestProjectChildIDsStayWithTheirProject(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	svc := project.NewService(db)

	u := testutil.CreateUser(t, db, "trainer@example.com")
	c := testutil.CreateCustomer(t, db, u.UserID, "Dana")
	rex := testutil.CreateProject(t, db, u.UserID, project.Project{
		CustomerID: c.CustomerID,
		Name:       "Rex",
		Notes:      []project.Note{{Description: "n1"}},
		Goals: []project.Goal{
			{Title: "sit", Tasks: []project.Task{{Title: "a"}}},
		},
	})
	buddy := testutil.CreateProject(t, db, u.UserID, project.Project{CustomerID: c.CustomerID, Name: "Buddy"})

	t.Run("goals copied from another project get new ids", func(t *testing.T) {
		src, _ := svc.Get(ctx, rex)
		goals := src.Goals
		if err := svc.Update(ctx, buddy, &project.Patch{Goals: &goals}); err != nil {
			t.Fatalf("update: %v", err)
		}

		p, _ := svc.Get(ctx, buddy)
		if len(p.Goals) != 1 || len(p.Goals[0].Tasks) != 1 {
			t.Fatalf("unexpected goals %+v", p.Goals)
		}
		if p.Goals[0].GoalID == src.Goals[0].GoalID || p.Goals[0].Tasks[0].TaskID == src.Goals[0].Tasks[0].TaskID {
			t.Error("expected copied goal and task to get fresh ids")
		}

		again, _ := svc.Get(ctx, rex)
		if len(again.Goals) != 1 || again.Goals[0].GoalID != src.Goals[0].GoalID {
			t.Errorf("source project goals changed: %+v", again.Goals)
		}
	})

	t.Run("notes copied from another project get new ids", func(t *testing.T) {
		src, _ := svc.Get(ctx, rex)
		notes := src.Notes
		if err := svc.Update(ctx, buddy, &project.Patch{Notes: &notes}); err != nil {
			t.Fatalf("update: %v", err)
		}
		p, _ := svc.Get(ctx, buddy)
		if len(p.Notes) != 1 || p.Notes[0].NoteID == src.Notes[0].NoteID {
			t.Errorf("unexpected notes %+v", p.Notes)
		}
	})

	t.Run("a repeated id is used once", func(t *testing.T) {
		before, _ := svc.Get(ctx, rex)
		n := before.Notes[0]
		notes := []project.Note{n, {NoteID: n.NoteID, Description: "again"}}
		if err := svc.Update(ctx, rex, &project.Patch{Notes: &notes}); err != nil {
			t.Fatalf("update: %v", err)
		}

		p, _ := svc.Get(ctx, rex)
		if len(p.Notes) != 2 {
			t.Fatalf("expected 2 notes, got %+v", p.Notes)
		}
		if p.Notes[0].NoteID != n.NoteID || p.Notes[1].NoteID == n.NoteID {
			t.Errorf("expected first note to keep %s and the second a new id, got %s and %s",
				n.NoteID, p.Notes[0].NoteID, p.Notes[1].NoteID)
		}
	})

	t.Run("unknown ids are replaced on create", func(t *testing.T) {
		ids, err := svc.Create(ctx, u.UserID, []project.Project{{
			CustomerID: c.CustomerID,
			Name:       "Bella",
			Notes:      []project.Note{{NoteID: "x"}, {NoteID: "x"}},
			Goals:      []project.Goal{{GoalID: "g", Tasks: []project.Task{{TaskID: "g"}}}},
		}})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		p, _ := svc.Get(ctx, ids[0])
		if len(p.Notes) != 2 || p.Notes[0].NoteID == "x" || p.Notes[0].NoteID == p.Notes[1].NoteID {
			t.Errorf("unexpected notes %+v", p.Notes)
		}
		if p.Goals[0].GoalID == "g" || p.Goals[0].Tasks[0].TaskID == "g" {
			t.Errorf("unexpected goal ids %+v", p.Goals)
		}
	})
}
