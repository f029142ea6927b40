package repository

// Models lists every table model, for gorm auto-migration in development.
func Models() []interface{} {
	return []interface{}{
		&BookingModel{},
		&ClientProfileModel{},
		&ProviderProfileModel{},
		&DeviceTokenModel{},
		&PaymentRecordModel{},
		&EarningModel{},
		&AuditEventModel{},
		&NotificationDeliveryModel{},
	}
}
