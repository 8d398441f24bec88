// Package command implements the hashguard-cli commands.
//
// Key operations:
//
//	get KEY                 print a value
//	set KEY VALUE           store a value (--stdin reads it from input)
//	delete KEY...           remove keys and print how many existed
//	exists KEY              print true or false
//
// Store management:
//
//	stats [--shards]        store statistics, optionally per shard
//	rehash                  rebuild every shard under a fresh seed
//	health                  liveness and readiness of the server
//
// Client settings:
//
//	config show|add|use|remove
//	shell                   interactive session running the commands above
//
// Global flags select the server (--server, a profile or unix:// socket),
// the output format (--output table|json|yaml) and the request timeout.
package command
