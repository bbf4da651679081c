package models

// DoubleNameInfo carries the resolved naming of one synthesized double.
// Derived once per synthesis call; immutable afterwards.
type DoubleNameInfo struct {
	DoubleName string // name of the generated double type
	ShortName  string // original short type name, e.g. "PaymentGateway"
	Qualified  string // fully qualified original name, e.g. "billing.PaymentGateway"
	Package    string // package the double is generated into
}
