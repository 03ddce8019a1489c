/*
Package tls builds the TLS setup of the registry client.

The registry can be reached with the system roots alone, or with an extra
CA bundle and a client certificate:

	cfg := tls.ClientConfig{
		CAFile:     "/etc/ismp/certs/registry-ca.pem",
		CertFile:   "/etc/ismp/certs/client.crt",
		KeyFile:    "/etc/ismp/certs/client.key",
		MinVersion: "1.2",
	}

	tlsConfig, reloader, err := cfg.Build(logger)
	if err != nil {
		log.Fatal(err)
	}
	if reloader != nil {
		_ = reloader.Start(ctx)
	}

# Certificate Auto-Reload

The client certificate is served through tls.Config.GetClientCertificate,
so renewed files are picked up on the next handshake after the reloader
notices them.
*/
package tls
