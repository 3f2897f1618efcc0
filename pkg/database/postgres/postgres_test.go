package postgres

import "testing"

func TestConnectionInfo_DSN(t *testing.T) {
	info := ConnectionInfo{
		Host:     "db",
		Port:     5433,
		Username: "slips",
		DBName:   "hub3",
		SSLMode:  "disable",
		Password: "secret",
	}

	want := "host=db port=5433 user=slips dbname=hub3 sslmode=disable password=secret"
	if got := info.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
