package domain

// Category is a closed enumeration of inbox email categories. The categorizer
// must never emit a label outside this set.
type Category string

const (
	CategoryWork      Category = "work"
	CategoryFinance   Category = "finance"
	CategoryEvents    Category = "events"
	CategoryMarketing Category = "marketing"
	CategoryAccount   Category = "account"
	CategoryPersonal  Category = "personal"
	CategoryGeneral   Category = "general"
)

// InboxEmail is a fetched inbox message enriched for the dashboard.
type InboxEmail struct {
	ID        string     `json:"id"`
	Subject   string     `json:"subject"`
	From      string     `json:"from"`
	Date      string     `json:"date"`
	Body      string     `json:"body,omitempty"`
	Snippet   string     `json:"snippet,omitempty"`
	Title     string     `json:"title"`
	Tags      []Category `json:"tags"`
	Preview   string     `json:"preview"`
	AISummary *string    `json:"aiSummary"`
}
