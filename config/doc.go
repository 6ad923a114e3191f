// Package config loads the dashcache YAML configuration file.
//
// Durations are written as Go duration strings ("5m", "250ms"). Credential
// fields accept ${VAR} environment references and secretref:<provider>:<ref>
// values, resolved at load time through package secret.
//
//	cache:
//	  ttl: 5m
//	  max_size: 500
//	store:
//	  base_url: https://${STORE_HOST}/v1
//	  signing_key: secretref:file:store-signing-key
//	observe:
//	  logging:
//	    level: debug
//	secrets:
//	  file_dir: /run/secrets
package config
