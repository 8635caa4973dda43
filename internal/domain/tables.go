package domain

var Tables = []interface{}{
	// System
	&SysOpr{},
	&SysApiKey{},
	// Session records
	&Device{},
	&Message{},
	&Contact{},
}
