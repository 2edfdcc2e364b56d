// Package randomname hands out memorable "adjective-noun" names for
// resources created without one.
//
// Names are unique within the process. Generate appends a hex suffix for a
// larger namespace; GenerateSimple stays short and readable. An optional
// callback can veto candidates, typically to enforce uniqueness against a
// store.
package randomname
