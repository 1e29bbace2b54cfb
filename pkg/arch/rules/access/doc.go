// Package access provides rules about which dependency edges are allowed.
//
//   - AR01: Slice Isolation - internal slices of different modules do not depend on each other
//   - AR05: Cross-Package Internal Access - no unit reaches into another module's internal package
//   - AR06: Depth Limit - no unit reaches more than two levels below a common ancestor
//
// AR01 and AR06 overlap on some edges. They are kept as independent checks
// because their trigger conditions differ.
package access
