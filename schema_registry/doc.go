// Package schema_registry provides integration with Confluent Schema Registry.
//
// The gateway resolves every key and value schema through the registry: the
// subject of a topic is "<topic>-key" or "<topic>-value", and records are
// always published with a registered schema id in the Confluent wire header.
//
// # Architecture
//
// This package follows the "accept interfaces, return structs" design pattern:
//   - Registry interface: the registry operations the gateway needs
//   - Client struct: HTTP implementation of Registry with id and subject caches
//   - Retriever struct: parses registry schemas into avro codecs and caches each
//     lookup with refresh and retry windows
//   - AvroSerializer: encodes native values with the Confluent framing and
//     satisfies kafka.Serializer
//   - FX module: provides *Client, Registry and *Retriever
//
// # Direct Usage (Without FX)
//
//	client, err := schema_registry.NewClient(schema_registry.Config{
//	    URL:      "http://localhost:8081",
//	    Username: "user",     // Optional
//	    Password: "password", // Optional
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	retriever := schema_registry.NewRetriever(client, schema_registry.Config{})
//	retriever.Start()
//	defer retriever.Stop(context.Background())
//
//	latest, err := retriever.BySubjectAndVersion(ctx, "android_phone_battery", true, 0)
//	if err != nil {
//	    return err
//	}
//	payload, err := schema_registry.NewAvroSerializer(latest).Serialize(record)
//
// # Caching
//
// Client caches schema text by id and registered ids by subject and schema,
// which never change once assigned. Retriever caches parsed schemas by
// (subject, id) and (subject, version); version 0 stands for the latest
// version and is refreshed after Config.CacheRefresh. Lookup failures,
// including ErrSchemaNotFound, are replayed until Config.CacheRetry has
// passed. Entries that have not been refreshed for two refresh windows are
// removed every Config.CleanInterval.
//
// # FX Module Integration
//
//	app := fx.New(
//	    schema_registry.FXModule,
//	    fx.Provide(func() schema_registry.Config {
//	        return schema_registry.Config{URL: os.Getenv("SCHEMA_REGISTRY_URL")}
//	    }),
//	)
//
// The module starts the cleanup loop on application start and stops it on
// shutdown.
//
// # Observability (Observer Hook)
//
// Client reports every registry call with its HTTP status and whether the
// result came from the cache. Retriever reports each stale cache cleanup with
// the number of removed entries.
//
// # Wire Format
//
// The Confluent wire format prepends a 5-byte header to each payload:
//
//	[magic byte 0x0][schema id, 4 bytes big-endian][avro binary]
//
// Use EncodeSchemaID and DecodeSchemaID to handle the header directly.
package schema_registry
