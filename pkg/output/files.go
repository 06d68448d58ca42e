// Copyright 2026 CodeSail Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/codesail/codesail/pkg/workspace"
	"github.com/fatih/color"
)

// WriteFiles prints a workspace listing.
func WriteFiles(w io.Writer, files []workspace.File, format Format, useColor bool) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		for _, f := range files {
			if err := enc.Encode(f); err != nil {
				return err
			}
		}
		return nil
	}

	icon := color.New(color.FgCyan)
	if useColor {
		icon.EnableColor()
	} else {
		icon.DisableColor()
	}

	for _, f := range files {
		if _, err := fmt.Fprintf(w, "%s %s\n", icon.Sprintf("[%-10s]", f.Icon), f.Path); err != nil {
			return err
		}
	}
	if len(files) == 0 {
		_, err := fmt.Fprintln(w, "No files found")
		return err
	}
	return nil
}
