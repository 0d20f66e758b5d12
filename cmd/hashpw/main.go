// Command hashpw imprime el hash bcrypt de un password para cargas manuales.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"acm-portal/internal/service"
)

func main() {
	password := flag.String("password", "", "password a hashear; si se omite se lee de stdin")
	cost := flag.Int("cost", service.ManualHashCost, "costo bcrypt")
	flag.Parse()

	if err := run(os.Stdin, os.Stdout, *password, *cost); err != nil {
		log.Fatalf("hashpw: %v", err)
	}
}

func run(stdin io.Reader, stdout io.Writer, password string, cost int) error {
	if password == "" {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return fmt.Errorf("empty password")
	}
	hash, err := service.NewPasswordHasher(cost).Hash(password)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, hash)
	return err
}
