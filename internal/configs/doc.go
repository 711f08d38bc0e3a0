// Package configs manages the keysweep search configuration.
//
// Configuration is stored in TOML format, by default in ./keysweep.toml:
//
//	[ciphertext]
//	value = "a64NqFqDSxvT..."        # or file = "blob.b64"
//
//	[artifacts]
//	paths = ["lib/**/*.so"]
//
//	[candidates]
//	salt = "052daeff..."            # hex
//	passwords = ["bestdict", ""]
//	iterations = 1000
//	prf = "sha1"                    # or "sha256"
//
//	[scan]
//	workers = 0                     # one per CPU
//	batch_size = 4096
//	timeout = "0s"
//	collect_all = false
//
//	[match]
//	heuristic = "markup"            # markup, magic or printable
//	markers = ["<div", "<b>"]
//
//	[output]
//	preview_length = 150
//	journal = ""                    # JSON Lines run journal
//
// A missing file yields DefaultConfig(). Command-line flags are applied on
// top of the loaded values by the cmd package.
package configs
