// Package logger provides leveled, colored logging for keysweep commands.
//
// # Verbosity Levels
//
//   - --verbose: Shows info and warning messages
//   - --debug: Shows all messages including debug details
//
// Without flags only critical warnings are shown, so a search
// prints nothing but its spinner and the final report.
//
// # Log Methods
//
//	Logger.Infof()       // Shown with --verbose or --debug
//	Logger.Debugf()      // Shown only with --debug
//	Logger.Warnf()       // Shown with --verbose or --debug
//	Logger.WarnfAlways() // Always shown
//
// The zero Logger is quiet and writes to stdout/stderr, which makes it a
// safe default for library callers of the recovery engine.
package logger
