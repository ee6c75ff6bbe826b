// Package env lê a configuração do processo a partir de variáveis de ambiente.
// As funções Get* aceitam um default opcional; as Must* entram em pânico na
// inicialização quando a variável está ausente ou malformada.
package env

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func lookup[T any](name string, parse func(string) (T, error), defaultValue []T) T {
	value, err := parse(os.Getenv(name))
	if err != nil && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func mustLookup[T any](name, kind string, parse func(string) (T, error)) T {
	value, err := parse(os.Getenv(name))
	if err != nil {
		panic(fmt.Sprintf("%s must contain a %s value!", name, kind))
	}
	return value
}

func parseString(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("empty")
	}
	return raw, nil
}

func parseInt32(raw string) (int32, error) {
	value, err := strconv.ParseInt(raw, 10, 32)
	return int32(value), err
}

// GetString extracts a String value from the given environment variable
func GetString(name string, defaultValue ...string) string {
	return lookup(name, parseString, defaultValue)
}

// MustGetString panics if the environment variable is empty
func MustGetString(name string) string {
	value := os.Getenv(name)
	if value == "" {
		panic(fmt.Sprintf("%s can't be empty", name))
	}
	return value
}

func GetInt(name string, defaultValue ...int) int {
	return lookup(name, strconv.Atoi, defaultValue)
}

func MustGetInt(name string) int {
	return mustLookup(name, "int", strconv.Atoi)
}

func GetInt32(name string, defaultValue ...int32) int32 {
	return lookup(name, parseInt32, defaultValue)
}

func GetBool(name string, defaultValue ...bool) bool {
	return lookup(name, strconv.ParseBool, defaultValue)
}

// GetDuration aceita o formato de time.ParseDuration ("250ms", "1m30s").
func GetDuration(name string, defaultValue ...time.Duration) time.Duration {
	return lookup(name, time.ParseDuration, defaultValue)
}

// GetStrings lê uma lista separada por vírgulas, ignorando itens vazios.
func GetStrings(name string, defaultValue ...string) []string {
	raw := os.Getenv(name)
	if strings.TrimSpace(raw) == "" {
		return defaultValue
	}

	var values []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			values = append(values, item)
		}
	}
	return values
}
