/*
Package config loads the LogicMonitor account configuration.

Configuration is layered, lowest precedence first:

 1. YAML file passed with --config (optional)
 2. LMSTATE_* environment variables
 3. CLI flags (applied by cmd/lmstate on top of Load's result)

The file format:

	company: mycompany
	access_id: my-access-id
	access_key: my-access-key
	# base_url: https://mycompany.logicmonitor.com/santaba/rest
	# timeout: 30s
	# max_attempts: 3
	# backoff_base: 500ms

Credentials are mandatory and validated before the engine makes its
first remote call; the access key never appears in logs or error
messages. There is no ambient or global credential state anywhere in the
repo: the Account value is passed explicitly into the API client and
nothing else reads the environment.
*/
package config
