package api

import (
	"time"

	"winsbygroup.com/tracker/internal/auth"
	"winsbygroup.com/tracker/internal/customer"
	"winsbygroup.com/tracker/internal/project"
)

// -------------------------
// Auth DTOs
// -------------------------

type RegisterRequest struct {
	Email     string `json:"email" form:"email"`
	Password  string `json:"password" form:"password"`
	FirstName string `json:"firstName" form:"firstName"`
	LastName  string `json:"lastName" form:"lastName"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type ProfileResponse struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func toProfileResponse(p auth.Profile) ProfileResponse {
	return ProfileResponse{
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
	}
}

// -------------------------
// Customer DTOs
// -------------------------

// CustomerRequest is used for create and update. Absent fields are nil.
type CustomerRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}

func (r *CustomerRequest) patch() *customer.Patch {
	return &customer.Patch{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		Address:   r.Address,
	}
}

type CustomerResponse struct {
	ID        string `json:"_id"`
	User      string `json:"user"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

func toCustomerResponse(c *customer.Customer) *CustomerResponse {
	if c == nil {
		return nil
	}
	return &CustomerResponse{
		ID:        c.CustomerID,
		User:      c.UserID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
	}
}

type ProjectRefResponse struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// CustomerListItem is a customer as listed for its owner.
type CustomerListItem struct {
	ID        string               `json:"_id"`
	FirstName string               `json:"firstName"`
	LastName  string               `json:"lastName"`
	Email     string               `json:"email"`
	Phone     string               `json:"phone"`
	Address   string               `json:"address"`
	Projects  []ProjectRefResponse `json:"projects"`
}

func toCustomerList(in []customer.WithProjects) []CustomerListItem {
	out := make([]CustomerListItem, 0, len(in))
	for _, c := range in {
		refs := make([]ProjectRefResponse, 0, len(c.Projects))
		for _, p := range c.Projects {
			refs = append(refs, ProjectRefResponse{ID: p.ProjectID, Name: p.Name})
		}
		out = append(out, CustomerListItem{
			ID:        c.CustomerID,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Email:     c.Email,
			Phone:     c.Phone,
			Address:   c.Address,
			Projects:  refs,
		})
	}
	return out
}

// -------------------------
// Project DTOs
// -------------------------

type Dog struct {
	Diagnosis               string `json:"diagnosis"`
	Accessories             string `json:"accessories"`
	EnvironmentalManagement string `json:"environmentalManagement"`
	Summary                 string `json:"summary"`
}

type DogPatch struct {
	Diagnosis               *string `json:"diagnosis"`
	Accessories             *string `json:"accessories"`
	EnvironmentalManagement *string `json:"environmentalManagement"`
	Summary                 *string `json:"summary"`
}

type Note struct {
	ID           string     `json:"_id,omitempty"`
	CreationTime *time.Time `json:"creationTime"`
	Description  string     `json:"description"`
}

type Task struct {
	ID        string `json:"_id,omitempty"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type Goal struct {
	ID          string     `json:"_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	Tasks       []Task     `json:"tasks"`
}

type CreateProjectRequest struct {
	Name     string `json:"name"`
	Customer string `json:"customer"`
	Dog      Dog    `json:"dog"`
	Notes    []Note `json:"notes"`
	Goals    []Goal `json:"goals"`
}

// UpdateProjectRequest is a partial update. A present notes or goals list
// replaces the stored one.
type UpdateProjectRequest struct {
	Name  *string   `json:"name"`
	Dog   *DogPatch `json:"dog"`
	Notes *[]Note   `json:"notes"`
	Goals *[]Goal   `json:"goals"`
}

type ProjectResponse struct {
	ID       string            `json:"_id"`
	Name     string            `json:"name"`
	Customer *CustomerResponse `json:"customer"`
	Dog      Dog               `json:"dog"`
	Notes    []Note            `json:"notes"`
	Goals    []Goal            `json:"goals"`
}

func (r *CreateProjectRequest) project() project.Project {
	return project.Project{
		CustomerID: r.Customer,
		Name:       r.Name,
		Dog: project.Dog{
			Diagnosis:               r.Dog.Diagnosis,
			Accessories:             r.Dog.Accessories,
			EnvironmentalManagement: r.Dog.EnvironmentalManagement,
			Summary:                 r.Dog.Summary,
		},
		Notes: toNotes(r.Notes),
		Goals: toGoals(r.Goals),
	}
}

func (r *UpdateProjectRequest) patch() *project.Patch {
	p := &project.Patch{Name: r.Name}
	if r.Dog != nil {
		p.Dog = &project.DogPatch{
			Diagnosis:               r.Dog.Diagnosis,
			Accessories:             r.Dog.Accessories,
			EnvironmentalManagement: r.Dog.EnvironmentalManagement,
			Summary:                 r.Dog.Summary,
		}
	}
	if r.Notes != nil {
		notes := toNotes(*r.Notes)
		p.Notes = &notes
	}
	if r.Goals != nil {
		goals := toGoals(*r.Goals)
		p.Goals = &goals
	}
	return p
}

func toNotes(in []Note) []project.Note {
	out := make([]project.Note, 0, len(in))
	for _, n := range in {
		out = append(out, project.Note{
			NoteID:       n.ID,
			CreationTime: n.CreationTime,
			Description:  n.Description,
		})
	}
	return out
}

func toGoals(in []Goal) []project.Goal {
	out := make([]project.Goal, 0, len(in))
	for _, g := range in {
		tasks := make([]project.Task, 0, len(g.Tasks))
		for _, t := range g.Tasks {
			tasks = append(tasks, project.Task{
				TaskID:    t.ID,
				Title:     t.Title,
				Completed: t.Completed,
			})
		}
		out = append(out, project.Goal{
			GoalID:      g.ID,
			Title:       g.Title,
			Description: g.Description,
			StartTime:   g.StartTime,
			EndTime:     g.EndTime,
			Tasks:       tasks,
		})
	}
	return out
}

func toProjectResponse(p *project.Populated) *ProjectResponse {
	notes := make([]Note, 0, len(p.Notes))
	for _, n := range p.Notes {
		notes = append(notes, Note{
			ID:           n.NoteID,
			CreationTime: n.CreationTime,
			Description:  n.Description,
		})
	}

	goals := make([]Goal, 0, len(p.Goals))
	for _, g := range p.Goals {
		tasks := make([]Task, 0, len(g.Tasks))
		for _, t := range g.Tasks {
			tasks = append(tasks, Task{ID: t.TaskID, Title: t.Title, Completed: t.Completed})
		}
		goals = append(goals, Goal{
			ID:          g.GoalID,
			Title:       g.Title,
			Description: g.Description,
			StartTime:   g.StartTime,
			EndTime:     g.EndTime,
			Tasks:       tasks,
		})
	}

	return &ProjectResponse{
		ID:       p.ProjectID,
		Name:     p.Name,
		Customer: toCustomerResponse(p.Customer),
		Dog: Dog{
			Diagnosis:               p.Dog.Diagnosis,
			Accessories:             p.Dog.Accessories,
			EnvironmentalManagement: p.Dog.EnvironmentalManagement,
			Summary:                 p.Dog.Summary,
		},
		Notes: notes,
		Goals: goals,
	}
}
