// Osmosis is the command-line companion of the OSMOSIS-AI interceptor.
//
// The interceptor itself is a library (package osmosis); this command helps
// operate it:
//
//	# Check a configuration file, with environment overrides applied
//	osmosis validate --config osmosis.yaml
//
//	# Print the owner hash envelopes carry for an API key
//	osmosis hash osm-live-1234
//
//	# Receive envelopes locally instead of sending them to the cloud
//	osmosis ingest --addr 127.0.0.1:8787
//	OSMOSIS_CLOUD_BASE_URL=http://127.0.0.1:8787 ./my-app
//
//	# Show version information
//	osmosis version
package main

func main() {
	Execute()
}
