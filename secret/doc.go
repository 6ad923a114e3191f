// Package secret resolves credentials referenced from configuration.
//
// Configuration values pass through two stages:
//   - strict environment expansion (ExpandEnvStrict), where ${VAR} must be set
//     and $$ escapes a literal dollar;
//   - secret references of the form secretref:<provider>:<ref>, resolved by a
//     registered Provider. A reference may be the whole value or embedded in
//     it, as in "Bearer secretref:env:STORE_TOKEN".
//
// Two providers are built in: "env" reads environment variables and "file"
// reads mounted secret files.
package secret
