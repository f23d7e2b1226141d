package model

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// DesignOption maps an appliance type and treatment to the design name the
// lab uses for it. Seeded at startup; editable by admins.
type DesignOption struct {
	gorm.Model
	ApplianceType string `json:"appliance_type" gorm:"not null;index:idx_design_option,unique"`
	Treatment     string `json:"treatment" gorm:"not null;index:idx_design_option,unique"`
	DesignName    string `json:"design_name" gorm:"not null"`
}

func SeedDesignOptions(db *gorm.DB) error {
	options := []DesignOption{
		{ApplianceType: "surgical-day-appliance", Treatment: "full-arch-fixed", DesignName: "Surgical Day Appliance"},
		{ApplianceType: "printed-try-in", Treatment: "full-arch-fixed", DesignName: "Printed Try-In"},
		{ApplianceType: "nightguard", Treatment: "nightguard", DesignName: "Nightguard"},
		{ApplianceType: "direct-load-pmma", Treatment: "full-arch-fixed", DesignName: "Direct Load PMMA"},
		{ApplianceType: "direct-load-zirconia", Treatment: "full-arch-fixed", DesignName: "Direct Load Zirconia"},
		{ApplianceType: "ti-bar-superstructure", Treatment: "full-arch-fixed", DesignName: "Ti-Bar Superstructure"},
		{ApplianceType: "crown", Treatment: "single-unit", DesignName: "Crown"},
		{ApplianceType: "denture", Treatment: "removable", DesignName: "Denture"},
	}

	for _, opt := range options {
		var existing DesignOption
		err := db.Where("appliance_type = ? AND treatment = ?", opt.ApplianceType, opt.Treatment).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.Create(&opt).Error; err != nil {
			return fmt.Errorf("failed to seed design option %s/%s: %w", opt.ApplianceType, opt.Treatment, err)
		}
	}
	return nil
}

// GenerateDesignName resolves the lab's design name for an appliance type and
// treatment. Unknown combinations fall back to a title-cased rendering of the
// appliance type so a missing lookup row never blocks a save.
func GenerateDesignName(db *gorm.DB, applianceType, treatment string) string {
	if applianceType == "" || treatment == "" {
		return ""
	}
	var opt DesignOption
	err := db.Where("appliance_type = ? AND treatment = ?", applianceType, treatment).First(&opt).Error
	if err == nil {
		return opt.DesignName
	}
	return titleFromSlug(applianceType)
}

func titleFromSlug(slug string) string {
	parts := strings.Split(slug, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
