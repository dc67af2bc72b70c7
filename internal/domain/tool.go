package domain

import "time"

type ToolCategory string

const (
	ToolCategoryPowerTool ToolCategory = "POWER_TOOL"
	ToolCategoryAccessory ToolCategory = "ACCESSORY"
)

// Tool is a catalog entry. Power tools carry a finite available count
// that is reserved at rental time and restored at return; accessories
// are consumables sold outright and carry no reservation.
type Tool struct {
	ID             int64        `json:"id"`
	Name           string       `json:"name"`
	Category       ToolCategory `json:"category"`
	PricePaise     int64        `json:"price_paise"`
	AvailableCount int32        `json:"available_count"`
	CreatedOn      time.Time    `json:"created_on"`
	UpdatedOn      time.Time    `json:"updated_on"`
}
