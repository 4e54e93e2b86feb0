package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"
	"github.com/mattn/go-colorable"

	"notehub/internal/notehub/ui"
)

// stdout возвращает вывод, понимающий ANSI на любой платформе, и подходящий стиль.
func stdout() (io.Writer, ui.Style) {
	return colorable.NewColorableStdout(), ui.StyleFor(os.Stdout)
}

func writeJSON(w io.Writer, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
