package domain

// Client is a customer of the business
type Client struct {
	ID    int64
	Name  string
	Email *string
	Phone *string
}

// Staff is an employee who performs treatments
type Staff struct {
	ID    int64
	Name  string
	Email *string
	Phone *string
}

// Treatment is a service offered by the business
type Treatment struct {
	ID              int64
	Name            string
	DurationMinutes int
	Price           float64
}
