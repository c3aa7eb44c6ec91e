// Package cli provides the interactive TaskKeeper command-line client.
//
// It stands in for the Mini App screens: the REPL reads one command per line,
// drives the sync engine, and prints the derived views. Typical flow: pick a
// host bridge, load preferences, load the snapshot, auto-join a project when
// the launch carries an invite, then read commands until exit.
//
// Commands that need several values prompt for them. Prompts are hidden when
// stdin is not a terminal, so the client can also be scripted.
package cli
