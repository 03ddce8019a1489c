/*
Package security groups the transport security of the registry client.

# TLS Configuration

Trust an extra CA and present a client certificate to the registry:

	appCfg, err := config.LoadOrDefault(path)
	if err != nil {
		log.Fatal(err)
	}
	cfg := tls.ClientConfigFrom(appCfg.Registry.TLS)

	tlsConfig, reloader, err := cfg.Build(logger)
	if err != nil {
		log.Fatal(err)
	}

The returned configuration is passed to submitter.HTTPConfig.TLS.
*/
package security
