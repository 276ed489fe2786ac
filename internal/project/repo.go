package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	// ErrNotFound is returned when no project has the requested id.
	ErrNotFound = errors.New("project not found")

	// ErrCustomerNotFound is returned when a project references a customer
	// that does not exist or belongs to another user.
	ErrCustomerNotFound = errors.New("customer not found")
)

type Repository interface {
	Get(ctx context.Context, id string) (*Project, error)
	Create(ctx context.Context, tx *sqlx.Tx, p *Project) (string, error)
	Patch(ctx context.Context, tx *sqlx.Tx, id string, p *Patch) error
	Owner(ctx context.Context, id string) (string, error)
	CustomerOwner(ctx context.Context, tx *sqlx.Tx, customerID string) (string, error)
}

type repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repository {
	return &repo{db: db}
}

type projectRow struct {
	ProjectID                  string `db:"project_id"`
	CustomerID                 string `db:"customer_id"`
	Name                       string `db:"project_name"`
	DogDiagnosis               string `db:"dog_diagnosis"`
	DogAccessories             string `db:"dog_accessories"`
	DogEnvironmentalManagement string `db:"dog_environmental_management"`
	DogSummary                 string `db:"dog_summary"`
}

func (r *repo) Get(ctx context.Context, id string) (*Project, error) {
	var row projectRow
	err := r.db.GetContext(ctx, &row, getProjectSQL, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w (%s)", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	notes := []Note{}
	if err := r.db.SelectContext(ctx, &notes, getNotesSQL, id); err != nil {
		return nil, fmt.Errorf("get project notes: %w", err)
	}

	goals := []Goal{}
	if err := r.db.SelectContext(ctx, &goals, getGoalsSQL, id); err != nil {
		return nil, fmt.Errorf("get project goals: %w", err)
	}

	var tasks []Task
	if err := r.db.SelectContext(ctx, &tasks, getTasksSQL, id); err != nil {
		return nil, fmt.Errorf("get project tasks: %w", err)
	}

	byGoal := make(map[string][]Task, len(goals))
	for _, t := range tasks {
		byGoal[t.GoalID] = append(byGoal[t.GoalID], t)
	}
	for i := range goals {
		goals[i].Tasks = byGoal[goals[i].GoalID]
		if goals[i].Tasks == nil {
			goals[i].Tasks = []Task{}
		}
	}

	return &Project{
		ProjectID:  row.ProjectID,
		CustomerID: row.CustomerID,
		Name:       row.Name,
		Dog: Dog{
			Diagnosis:               row.DogDiagnosis,
			Accessories:             row.DogAccessories,
			EnvironmentalManagement: row.DogEnvironmentalManagement,
			Summary:                 row.DogSummary,
		},
		Notes: notes,
		Goals: goals,
	}, nil
}

func (r *repo) Create(ctx context.Context, tx *sqlx.Tx, p *Project) (string, error) {
	id := uuid.NewString()
	_, err := tx.ExecContext(ctx, createProjectSQL,
		id,
		p.CustomerID,
		p.Name,
		p.Dog.Diagnosis,
		p.Dog.Accessories,
		p.Dog.EnvironmentalManagement,
		p.Dog.Summary,
	)
	if err != nil {
		return "", fmt.Errorf("create project: %w", err)
	}

	// a new project owns no ids yet, so every child gets a fresh one
	ids := newIDSet(nil)
	if err := insertNotes(ctx, tx, id, p.Notes, ids); err != nil {
		return "", err
	}
	if err := insertGoals(ctx, tx, id, p.Goals, ids); err != nil {
		return "", err
	}
	return id, nil
}

func (r *repo) Patch(ctx context.Context, tx *sqlx.Tx, id string, p *Patch) error {
	dog := p.Dog
	if dog == nil {
		dog = &DogPatch{}
	}

	res, err := tx.ExecContext(ctx, patchProjectSQL,
		p.Name,
		dog.Diagnosis,
		dog.Accessories,
		dog.EnvironmentalManagement,
		dog.Summary,
		id,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w (%s)", ErrNotFound, id)
	}

	if p.Notes != nil {
		owned, err := ownedIDs(ctx, tx, getNoteIDsSQL, id)
		if err != nil {
			return fmt.Errorf("replace project notes: %w", err)
		}
		if _, err := tx.ExecContext(ctx, deleteNotesSQL, id); err != nil {
			return fmt.Errorf("replace project notes: %w", err)
		}
		if err := insertNotes(ctx, tx, id, *p.Notes, newIDSet(owned)); err != nil {
			return err
		}
	}

	if p.Goals != nil {
		owned, err := ownedIDs(ctx, tx, getGoalAndTaskIDsSQL, id, id)
		if err != nil {
			return fmt.Errorf("replace project goals: %w", err)
		}
		if _, err := tx.ExecContext(ctx, deleteGoalsSQL, id); err != nil {
			return fmt.Errorf("replace project goals: %w", err)
		}
		if err := insertGoals(ctx, tx, id, *p.Goals, newIDSet(owned)); err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) Owner(ctx context.Context, id string) (string, error) {
	var userID string
	err := r.db.GetContext(ctx, &userID, projectOwnerSQL, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w (%s)", ErrNotFound, id)
	}
	if err != nil {
		return "", fmt.Errorf("project owner: %w", err)
	}
	return userID, nil
}

func (r *repo) CustomerOwner(ctx context.Context, tx *sqlx.Tx, customerID string) (string, error) {
	var userID string
	err := tx.GetContext(ctx, &userID, customerOwnerSQL, customerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w (%s)", ErrCustomerNotFound, customerID)
	}
	if err != nil {
		return "", fmt.Errorf("customer owner: %w", err)
	}
	return userID, nil
}

func insertNotes(ctx context.Context, tx *sqlx.Tx, projectID string, notes []Note, ids *idSet) error {
	for i, n := range notes {
		_, err := tx.ExecContext(ctx, createNoteSQL,
			ids.keep(n.NoteID),
			projectID,
			i,
			utc(n.CreationTime),
			n.Description,
		)
		if err != nil {
			return fmt.Errorf("create project note: %w", err)
		}
	}
	return nil
}

func insertGoals(ctx context.Context, tx *sqlx.Tx, projectID string, goals []Goal, ids *idSet) error {
	for i, g := range goals {
		goalID := ids.keep(g.GoalID)
		_, err := tx.ExecContext(ctx, createGoalSQL,
			goalID,
			projectID,
			i,
			g.Title,
			g.Description,
			utc(g.StartTime),
			utc(g.EndTime),
		)
		if err != nil {
			return fmt.Errorf("create goal: %w", err)
		}

		for j, t := range g.Tasks {
			_, err := tx.ExecContext(ctx, createTaskSQL,
				ids.keep(t.TaskID),
				goalID,
				j,
				t.Title,
				t.Completed,
			)
			if err != nil {
				return fmt.Errorf("create task: %w", err)
			}
		}
	}
	return nil
}

// idSet hands out the row ids for a replaced list. A client-supplied id is
// kept only when the project already owned it and it has not been used
// earlier in the same write; anything else gets a fresh uuid.
type idSet struct {
	owned map[string]bool
	used  map[string]bool
}

func newIDSet(owned []string) *idSet {
	s := &idSet{
		owned: make(map[string]bool, len(owned)),
		used:  make(map[string]bool),
	}
	for _, id := range owned {
		s.owned[id] = true
	}
	return s
}

func (s *idSet) keep(id string) string {
	if id == "" || !s.owned[id] || s.used[id] {
		id = uuid.NewString()
	}
	s.used[id] = true
	return id
}

func ownedIDs(ctx context.Context, tx *sqlx.Tx, query string, args ...any) ([]string, error) {
	var ids []string
	if err := tx.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, err
	}
	return ids, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
