// Package placement provides rules about where code units may reside.
//
//   - AR02: Package Residency - every unit lives in an .api or .internal package
//   - AR03: API Nesting - an .api package is not nested in another .api or .internal package
//   - AR04: Internal Nesting - an .internal package is not nested in another .api or .internal package
package placement
