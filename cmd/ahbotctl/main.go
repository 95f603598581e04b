// Command ahbotctl sends admin commands to a running ahbot over its HTTP API.
//
//	ahbotctl status
//	ahbotctl venues
//	ahbotctl expire <venue> [class]
//	ahbotctl set <venue> <field> [quality] <value>
//	ahbotctl percentages <venue> <14 values>
//	ahbotctl reload <venue>
//	ahbotctl speed <multiplier>
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/talgya/auctionbot/internal/adminclient"
	"github.com/talgya/auctionbot/internal/economy"
)

var errUsage = errors.New("usage: ahbotctl status|venues|expire|set|percentages|reload|speed ...")

func main() {
	client := adminclient.New(
		envOrDefault("AHBOT_API_URL", "http://localhost:8080"),
		os.Getenv("AHBOT_ADMIN_KEY"),
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := run(ctx, client, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, c *adminclient.Client, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case "status":
		s, err := c.Status(ctx)
		if err != nil {
			return err
		}
		return printJSON(s)

	case "venues":
		vs, err := c.Venues(ctx)
		if err != nil {
			return err
		}
		return printJSON(vs)

	case "expire":
		if len(args) < 1 || len(args) > 2 {
			return errors.New("usage: ahbotctl expire <venue> [class]")
		}
		var class *uint8
		if len(args) == 2 {
			n, err := strconv.ParseUint(args[1], 10, 8)
			if err != nil {
				return fmt.Errorf("class %q: %w", args[1], err)
			}
			v := uint8(n)
			class = &v
		}
		n, err := c.Expire(ctx, args[0], class)
		if err != nil {
			return err
		}
		fmt.Printf("expired %d listings in %s\n", n, args[0])

	case "set":
		if len(args) < 3 || len(args) > 4 {
			return errors.New("usage: ahbotctl set <venue> <field> [quality] <value>")
		}
		quality := ""
		if len(args) == 4 {
			quality = args[2]
		}
		value, err := strconv.ParseUint(args[len(args)-1], 10, 32)
		if err != nil {
			return fmt.Errorf("value %q: %w", args[len(args)-1], err)
		}
		if err := c.SetField(ctx, args[0], args[1], quality, uint32(value)); err != nil {
			return err
		}
		fmt.Printf("%s %s set to %d\n", args[0], args[1], value)

	case "percentages":
		if len(args) != 1+economy.TierCount {
			return fmt.Errorf("usage: ahbotctl percentages <venue> <%d values>", economy.TierCount)
		}
		pct := make([]uint32, 0, economy.TierCount)
		for _, a := range args[1:] {
			v, err := strconv.ParseUint(a, 10, 32)
			if err != nil {
				return fmt.Errorf("percentage %q: %w", a, err)
			}
			pct = append(pct, uint32(v))
		}
		if err := c.SetPercentages(ctx, args[0], pct); err != nil {
			return err
		}
		fmt.Printf("%s percentages updated\n", args[0])

	case "reload":
		if len(args) != 1 {
			return errors.New("usage: ahbotctl reload <venue>")
		}
		gen, err := c.Reload(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s reloaded, generation %d\n", args[0], gen)

	case "speed":
		if len(args) != 1 {
			return errors.New("usage: ahbotctl speed <multiplier>")
		}
		speed, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("speed %q: %w", args[0], err)
		}
		got, err := c.SetSpeed(ctx, speed)
		if err != nil {
			return err
		}
		fmt.Printf("speed %g\n", got)

	default:
		return errUsage
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
