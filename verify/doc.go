// Package verify proves ownership claims a dapp makes through its metadata.
//
// A dapp owner who sets the "domain" metadata key can demonstrate control
// of that domain by publishing a TXT record at _dapp-owner.<domain>
// containing "dapp-owner=0x<owner identity hex>". VerifyOwner resolves the
// record and checks it names the dapp's current owner. Verification is
// advisory: the registry never requires it, consumers decide what to make
// of an unverified domain claim.
package verify
