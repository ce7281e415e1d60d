// Package record defines the persisted shape of a reconciled person or place
// together with the pure rules that keep it consistent: alias normalization,
// label adoption, the implausible-birth reset, and geo literal parsing.
package record
