package customer

type Customer struct {
	CustomerID string `db:"customer_id"`
	UserID     string `db:"user_id"`
	FirstName  string `db:"first_name"`
	LastName   string `db:"last_name"`
	Email      string `db:"email"`
	Phone      string `db:"phone"`
	Address    string `db:"address"`
}

// ProjectRef is the reduced view of a project shown in customer listings.
type ProjectRef struct {
	ProjectID  string `db:"project_id"`
	Name       string `db:"project_name"`
	CustomerID string `db:"customer_id"`
}

// WithProjects is a customer together with references to its projects.
type WithProjects struct {
	Customer
	Projects []ProjectRef
}

// Patch holds the fields of a partial update. Nil fields are left unchanged.
type Patch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Address   *string
}
