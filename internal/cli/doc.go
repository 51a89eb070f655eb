// Package cli assembles the snc-bounds command tree.
//
// The root command resolves the runtime configuration (flags, SNC_*
// environment variables, optional config file), installs the logger and
// owns the Prometheus recorder shared by every subcommand.
package cli
