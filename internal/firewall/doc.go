// Package firewall renders per-country iptables rule sets.
//
// # Overview
//
// Each country name is mapped to a file name token by [Sanitize]. Its ranges
// are written to a transient range file by [WriteRangeFile], which a
// [Synthesizer] then turns into one artifact per action:
//
//	<outdir>/<token>.txt          transient, removed once rules exist
//	<outdir>/<token>/DROP         <prefix> <start>-<end> -j DROP
//	<outdir>/<token>/ACCEPT       bidirectional runs only
//
// Artifacts are written to a temporary name and renamed into place, so a
// reader never sees a partial rule file.
//
// # Collisions
//
// Distinct names can sanitize to the same token ("Foo Bar" and "Foo_Bar").
// [AssignTokens] either rejects such a set with a [CollisionError] or
// disambiguates it with numeric suffixes, depending on [CollisionPolicy].
package firewall
