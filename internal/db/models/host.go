package models

import "gorm.io/gorm"

// Host is a physical machine in inventory. Hosts are owned by the
// infrastructure inventory; bookings only reference them through an
// instance's linked host.
type Host struct {
	gorm.Model
	ServerName string `json:"server_name" gorm:"not null;uniqueIndex;varchar(255)"`
	IPMIFQDN   string `json:"ipmi_fqdn" gorm:"not null;varchar(255)"`
}
