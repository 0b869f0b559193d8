// Package keybackend holds the access keys accepted by signed requests.
//
// Keys come from inline configuration, a key file, or both. Key files are a
// list of access_key/secret_key pairs in JSON or YAML, chosen by extension:
//
//	[
//	  {"access_key": "BKIAJCQJZKAWSTNVBHUJ", "secret_key": "TRDMBTZ1..."}
//	]
//
// A Store satisfies bucketfs.SecretStore, so it plugs straight into a
// bucketfs.SignatureVerifier.
package keybackend
