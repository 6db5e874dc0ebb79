package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ironsheep/ocr-session/internal/ocr"
)

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and OCR engine information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "ocr-session %s\n", a.info.Version)
			fmt.Fprintf(w, "  Built:      %s\n", a.info.BuildTime)
			fmt.Fprintf(w, "  Commit:     %s\n", a.info.GitCommit)
			fmt.Fprintf(w, "  Go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)

			info := ocr.GetInfo(a.cfg.TessdataPrefix)
			fmt.Fprintf(w, "  Backend:    %s\n", info.Backend)
			if info.Available {
				fmt.Fprintf(w, "  Tesseract:  %s\n", good(info.Version))
			} else {
				fmt.Fprintf(w, "  Tesseract:  %s (%s)\n", poor("unavailable"), info.Error)
			}
			if info.TessdataPath != "" {
				fmt.Fprintf(w, "  Tessdata:   %s\n", info.TessdataPath)
			}
			return nil
		},
	}
}
