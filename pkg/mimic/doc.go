/*
Package mimic is the runtime half of the mimic test-double generator.

The mimic command scans Go packages for //mimic:: directives and generates
one typed double per directive: a struct that implements (or embeds) the
target type and forwards every doubled method to a per-instance control
plane, the Double. Generated files register a DoubleFactory with
DefaultDoubleRegistry from init, so doubles can also be created by name
through CreateTestDouble without referencing the generated type directly.

A Double is configured during test setup and dispatches during exercise:

	gateway := NewMimicPaymentGateway_1a2b3c4d(t)
	gateway.Mimic().Stub("Charge").Returning("txn-1", nil)

	svc := NewBillingService(gateway)
	svc.Run()

	gateway.Mimic().Verify()

Stubs return canned values for matching calls. Mocks additionally carry
expectations about how often they are invoked, checked by Verify. Every
double owns its control plane from construction; there is no
configure-after-the-fact patching of internals.
*/
package mimic
