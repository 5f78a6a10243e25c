//go:build !cgo

package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func newIndexCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Persist the class graph to a Kuzu database (requires a cgo build)",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return errors.New("index is unavailable: cppuml was built without cgo")
		},
	}
}
