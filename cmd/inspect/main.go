// Command inspect dumps the contents of a fintrack Badger store as a table,
// one row per record, for local debugging. The store is opened read-only so
// it is safe to point at a live server's files.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	prefix := flag.String("prefix", "", "Prefix to scan (user:, msg:, conv:, budget:, txn:); empty scans everything")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Kind", "Created", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	count := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			// Secondary index keys hold only a reference, skip them.
			if strings.HasPrefix(key, "userid:") || strings.HasPrefix(key, "budgetid:") {
				continue
			}

			err := item.Value(func(v []byte) error {
				table.Append(describe(key, v))
				count++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Error while scanning: ", err)
	}

	table.Render()
	fmt.Printf("\n%d record(s)\n", count)
}

// describe builds one table row from a stored record. Values are JSON for
// every namespace; unparseable values fall back to a size-only row.
func describe(key string, value []byte) []string {
	var record map[string]any
	if err := json.Unmarshal(value, &record); err != nil {
		return []string{key, "RAW", "", "size: " + strconv.Itoa(len(value)) + " bytes"}
	}

	kind := strings.SplitN(key, ":", 2)[0]
	switch kind {
	case "user":
		return []string{key, "USER", timestamp(record["createdAt"]),
			fmt.Sprintf("%v <%v>", record["username"], record["email"])}
	case "msg", "conv":
		detail := fmt.Sprintf("%v -> %v: %v", short(record["from"]), short(record["to"]), record["message"])
		if reply, ok := record["reply"]; ok && reply != "" {
			detail += " (reply)"
		}
		return []string{key, strings.ToUpper(kind), nanoTimestamp(record["at"]), detail}
	case "budget":
		return []string{key, "BUDGET", timestamp(record["createdAt"]),
			fmt.Sprintf("%v %v %v (%v, %v)", record["name"], record["amount"], record["currency"],
				record["category"], record["period"])}
	case "txn":
		return []string{key, "TXN", nanoTimestamp(record["date"]),
			fmt.Sprintf("%v %v (%v)", record["type"], record["amount"], record["paymentMethod"])}
	default:
		return []string{key, "RAW", "", "size: " + strconv.Itoa(len(value)) + " bytes"}
	}
}

func timestamp(v any) string {
	seconds, ok := v.(float64)
	if !ok {
		return ""
	}
	return time.Unix(int64(seconds), 0).UTC().Format(time.RFC3339)
}

func nanoTimestamp(v any) string {
	nanos, ok := v.(float64)
	if !ok {
		return ""
	}
	return time.Unix(0, int64(nanos)).UTC().Format(time.RFC3339)
}

func short(v any) string {
	s, _ := v.(string)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
