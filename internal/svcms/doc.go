// Package svcms implements the SVCMS commit-message grammar: the two-tier
// (category.type) and single-tier commit headers, the trailer block
// (Context, Refs, Memory, Location, Tags) recognised greedily from the
// bottom of the message, and validation of parsed records against the
// effective configuration.
package svcms
