package models

// ExecutionStatus tracks a scrapping source's collection run. It is a
// dimension of its own, unrelated to the active flag.
type ExecutionStatus string

const (
	ExecutionStopped ExecutionStatus = "stopped"
	ExecutionRunning ExecutionStatus = "running"
	ExecutionError   ExecutionStatus = "error"
)

// ParseExecutionStatus normalizes the upstream vocabulary ("stop", "executando",
// "erro") into the canonical one. Unknown values read as stopped.
func ParseExecutionStatus(wire string) ExecutionStatus {
	switch wire {
	case "executando":
		return ExecutionRunning
	case "erro":
		return ExecutionError
	default:
		return ExecutionStopped
	}
}

// Label renders the status in the panel's language.
func (s ExecutionStatus) Label() string {
	switch s {
	case ExecutionRunning:
		return "executando"
	case ExecutionError:
		return "erro"
	default:
		return "parado"
	}
}

// Scrapping is an affiliate product source, collected either by scraping its
// page or by calling its API. Key1/Key2 carry the affiliate codes of
// scraping-type sources; API-type sources authenticate with login/password.
type Scrapping struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Type          string          `json:"type"`
	TypeName      string          `json:"type_name"`
	URL           string          `json:"url"`
	Login         string          `json:"login"`
	Password      string          `json:"password"`
	Key1          string          `json:"key1"`
	Key2          string          `json:"key2"`
	Active        bool            `json:"active"`
	Execution     ExecutionStatus `json:"execution"`
	ProductsCount int             `json:"products_count"`
	LastExecution string          `json:"last_execution"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
}

// TypeScraping and TypeAPI are the two source kinds. The upstream spells the
// first one "scrapping".
const (
	TypeScraping = "scrapping"
	TypeAPI      = "api"
)

func (s Scrapping) Status() string {
	return StatusLabel(s.Active)
}
