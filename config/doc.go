// Package config loads the gateway configuration.
//
// Settings come from an optional YAML file, overridden by environment
// variables named in each component's envconfig tags:
//
//	server:
//	  address: ":8090"
//	  max_request_size: 25165824
//	kafka:
//	  brokers: ["kafka-1:9092"]
//	  pool_size: 8
//	schema_registry:
//	  url: http://schema-registry:8081
//	auth:
//	  issuer: management-portal
//	  public_keys:
//	    ecdsa:
//	      - |
//	        -----BEGIN PUBLIC KEY-----
//	        ...
//
// KAFKA_BROKERS=kafka-1:9092,kafka-2:9092 replaces the broker list from the
// file. Unknown keys in the file are an error.
package config
