package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// UserError is returned for bad input. Commands print their usage for it.
type UserError struct {
	Msg string
	Err error
}

func (e UserError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Msg, e.Err)
}

func (e UserError) Unwrap() error {
	return e.Err
}

// silenceUsage prints usage only for UserErrors.
func silenceUsage(run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		_, ok := err.(UserError)
		// Print usage on UserError, suppress for success and internal errors
		cmd.SilenceUsage = !ok
		return err
	}
}
