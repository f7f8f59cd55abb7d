// The registry-cli binary exercises the dapp registry API from the
// command line: reads need no credentials, mutations are signed with the
// private key given via --private-key.
package main
