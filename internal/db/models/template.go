package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
)

// TemplateHostConfig describes one machine slot in a template: the hostname
// alias it will be known by within the booking, the image it boots from and
// the hardware flavor it requires.
type TemplateHostConfig struct {
	Hostname string `json:"hostname"`
	Image    string `json:"image"`
	Flavor   string `json:"flavor"`
}

// TemplateHostConfigs is stored as a JSON column.
type TemplateHostConfigs []TemplateHostConfig

// Template is the fixed topology a booking is created from. Templates are
// catalog data: read by the coordinator, managed elsewhere.
type Template struct {
	gorm.Model
	Name        string              `json:"name" gorm:"not null;uniqueIndex;varchar(255)"`
	Description string              `json:"description" gorm:"varchar(255)"`
	HostConfigs TemplateHostConfigs `json:"host_configs" gorm:"type:json"`
}

// Value implements the driver.Valuer interface
func (c TemplateHostConfigs) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements the sql.Scanner interface
func (c *TemplateHostConfigs) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("unsupported type for TemplateHostConfigs: %T", value)
	}
}
