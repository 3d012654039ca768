package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newCountryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "country CODE...",
		Short: "Look up countries by numeric or ISO-3 code",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := a.registry()
			if err != nil {
				return err
			}
			missing := 0
			for _, code := range args {
				c, ok := registry.QueryCountry(code)
				if !ok {
					missing++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t%s\n", c.Code, c.Abbr, c.Name, c.ISO2, c.ISO3)
			}
			if missing > 0 {
				return fmt.Errorf("%d of %d countries not found", missing, len(args))
			}
			return nil
		},
	}
}

func newProductCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "product CODE...",
		Short: "Look up HS product codes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := a.registry()
			if err != nil {
				return err
			}
			missing := 0
			for _, code := range args {
				p, ok := registry.QueryProduct(code)
				if !ok {
					missing++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p.Code, p.Description)
			}
			if missing > 0 {
				return fmt.Errorf("%d of %d products not found", missing, len(args))
			}
			return nil
		},
	}
}

func newHSCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hs ORIGIN_YEAR TARGET_YEAR CODE...",
		Short: "Convert product codes between HS revisions",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			origin, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid origin year %q", args[0])
			}
			target, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid target year %q", args[1])
			}

			registry, err := a.registry()
			if err != nil {
				return err
			}
			mapped, err := registry.QueryHSCodeByYears(origin, target, args[2:])
			if err != nil {
				return err
			}
			for i, code := range args[2:] {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", code, mapped[i])
			}
			return nil
		},
	}
}
