package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/viper"

	"comerciotech/internal/console"
	"comerciotech/internal/models"
)

const requestTimeout = 15 * time.Second

func main() {
	// --- Configuration ---
	viper.SetDefault("API_URL", "http://localhost:5001")
	viper.SetDefault("API_TOKEN", "")
	viper.AutomaticEnv()

	client := console.NewClient(viper.GetString("API_URL"), viper.GetString("API_TOKEN"))
	store := console.NewListStore(client)
	editor := console.NewEditor(client, store)

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	if err := store.Refresh(ctx); err != nil {
		log.Printf("Initial order list fetch failed: %v", err)
	}
	cancel()

	fmt.Println("ComercioTech console. Type 'help' for commands.")
	repl(client, store, editor)
}

func repl(client *console.Client, store *console.ListStore, editor *console.Editor) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("[%s] > ", editor.Mode())
		if !scanner.Scan() {
			return
		}
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		err := dispatch(ctx, args, client, store, editor)
		cancel()

		if err == errQuit {
			return
		}
		if err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
}

var errQuit = fmt.Errorf("quit")

func dispatch(ctx context.Context, args []string, client *console.Client, store *console.ListStore, editor *console.Editor) error {
	switch args[0] {
	case "quit", "exit":
		return errQuit
	case "help":
		printHelp()
		return nil
	case "login":
		if len(args) != 3 {
			return fmt.Errorf("usage: login <username> <password>")
		}
		if err := client.Login(ctx, args[1], args[2]); err != nil {
			return err
		}
		fmt.Println("logged in")
		return nil

	case "orders":
		if err := store.Refresh(ctx); err != nil {
			return err
		}
		printOrders(store.Orders())
		return nil
	case "customers":
		customers, err := client.ListCustomers(ctx)
		if err != nil {
			return err
		}
		printCustomers(customers)
		return nil
	case "products":
		products, err := client.ListProducts(ctx)
		if err != nil {
			return err
		}
		printProducts(products)
		return nil

	case "new":
		editor.StartCreate()
		return nil
	case "edit":
		if len(args) != 2 {
			return fmt.Errorf("usage: edit <row>")
		}
		order, err := orderAt(store, args[1])
		if err != nil {
			return err
		}
		editor.StartEdit(order)
		printBuffer(editor)
		return nil
	case "set":
		if len(args) < 3 {
			return fmt.Errorf("usage: set <field> <value>")
		}
		return editor.SetScalarField(args[1], strings.Join(args[2:], " "))
	case "add":
		key := editor.AddLine()
		fmt.Printf("added line %d\n", key)
		return nil
	case "rm":
		if len(args) != 2 {
			return fmt.Errorf("usage: rm <key>")
		}
		key, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("key must be a number, got %q", args[1])
		}
		return editor.RemoveLine(key)
	case "line":
		if len(args) < 4 {
			return fmt.Errorf("usage: line <key> <field> <value>")
		}
		key, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("key must be a number, got %q", args[1])
		}
		return editor.SetLineField(key, args[2], strings.Join(args[3:], " "))
	case "show":
		printBuffer(editor)
		return nil
	case "submit":
		if err := editor.Submit(ctx); err != nil {
			return err
		}
		fmt.Println("order saved")
		printOrders(store.Orders())
		return nil
	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("usage: delete <row>")
		}
		order, err := orderAt(store, args[1])
		if err != nil {
			return err
		}
		if err := client.DeleteOrder(ctx, order.ID); err != nil {
			return err
		}
		if err := store.Refresh(ctx); err != nil {
			return err
		}
		printOrders(store.Orders())
		return nil
	}
	return fmt.Errorf("unknown command %q, type 'help'", args[0])
}

// orderAt resolves a 1-based row number against the cached list.
func orderAt(store *console.ListStore, arg string) (models.Order, error) {
	row, err := strconv.Atoi(arg)
	if err != nil || row < 1 {
		return models.Order{}, fmt.Errorf("row must be a positive number, got %q", arg)
	}
	orders := store.Orders()
	if row > len(orders) {
		return models.Order{}, fmt.Errorf("row %d out of range, %d orders listed", row, len(orders))
	}
	return orders[row-1], nil
}

func printHelp() {
	fmt.Println(`commands:
  orders | customers | products     list records
  new                               start a blank order
  edit <row>                        load a listed order into the editor
  set <field> <value>               set customerRef or orderCode
  add                               append a line item
  rm <key>                          remove a line item
  line <key> <field> <value>        set a line item field
  show                              print the edit buffer
  submit                            save the buffered order
  delete <row>                      delete a listed order
  login <username> <password>       authenticate against the service
  quit`)
}

func printOrders(orders []models.Order) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROW\tCODE\tCUSTOMER\tTOTAL\tLINE ITEMS")
	for i, order := range orders {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%d\n", i+1, order.OrderCode, order.CustomerRef, order.OrderTotal, len(order.LineItems))
		for _, item := range order.LineItems {
			fmt.Fprintf(w, "\t  %d x %s\t($%.2f each)\ttotal $%.2f\t\n", item.Quantity, item.Name, item.UnitPrice, item.TotalPurchased)
		}
	}
	w.Flush()
}

func printCustomers(customers []models.Customer) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME\tREGISTERED\tID")
	for _, customer := range customers {
		fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\n", customer.Code, customer.FirstName, customer.LastName, customer.RegisteredAt, customer.ID)
	}
	w.Flush()
}

func printProducts(products []models.Product) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCATEGORY\tPRICE\tSTOCK\tID")
	for _, product := range products {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\t%s\n", product.Name, product.Category, product.Price, product.Stock, product.ID)
	}
	w.Flush()
}

func printBuffer(editor *console.Editor) {
	fmt.Printf("mode: %s", editor.Mode())
	if editor.Mode() == console.ModeEdit {
		fmt.Printf(" (order %s)", editor.OrderID())
	}
	fmt.Printf("\ncustomerRef: %s\norderCode: %s\n", editor.CustomerRef(), editor.OrderCode())
	for _, line := range editor.Lines() {
		fmt.Printf("  [%d] %s %q quantity=%d unitPrice=%.2f totalPurchased=%.2f\n",
			line.Key, line.Item.ProductRef, line.Item.Name, line.Item.Quantity, line.Item.UnitPrice, line.Item.TotalPurchased)
	}
}
