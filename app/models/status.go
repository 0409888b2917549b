package models

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// DeriveStatus maps a stock level to the catalog status shown to shoppers.
func DeriveStatus(stock int) string {
	if stock > 0 {
		return StatusActive
	}
	return StatusInactive
}

func IsValidStatus(status string) bool {
	return status == StatusActive || status == StatusInactive
}
