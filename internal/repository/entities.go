package repository

// Entities lists every table this package maps, in dependency order. Tests
// use it with AutoMigrate; deployments run the goose migrations instead.
func Entities() []interface{} {
	return []interface{}{
		&InquiryEntity{},
		&VisitorEntity{},
		&EmailConfigEntity{},
		&DailyReportEntity{},
	}
}
