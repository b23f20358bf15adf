// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package capture

// ArgsOptions tunes the ffmpeg command line.
type ArgsOptions struct {
	LogLevel  string   // -loglevel value; empty keeps ffmpeg's default
	InputArgs []string // extra options placed before -i (e.g. -rw_timeout)
}

// BuildArgs returns the ffmpeg arguments for job: overwrite output, read the
// stream, copy without re-encoding and stop after job.Duration. ffmpeg owns
// the duration limit.
func BuildArgs(job Job, opts ArgsOptions) []string {
	args := []string{"-hide_banner", "-nostdin"}
	if opts.LogLevel != "" {
		args = append(args, "-loglevel", opts.LogLevel)
	}
	// -stats keeps progress lines on stderr even with a quiet loglevel.
	args = append(args, "-stats", "-y")
	args = append(args, opts.InputArgs...)
	args = append(args,
		"-i", job.StreamURL,
		"-c", "copy",
		"-t", job.Seconds(),
		job.OutputPath,
	)
	return args
}
