package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&SysOpr{},
	&SysOprLog{},
	// Store
	&Product{},
	&Banner{},
	&Order{},
}
