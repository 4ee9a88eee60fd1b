package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"os"

	_ "github.com/dbridge-project/dbridge/pkg/backend/mysql"
	"github.com/dbridge-project/dbridge/pkg/config"
	"github.com/dbridge-project/dbridge/pkg/db"
	"github.com/dbridge-project/dbridge/pkg/metrics"
	"github.com/dbridge-project/dbridge/pkg/util/logutil"
	"go.uber.org/zap"
)

var (
	configFilePath = flag.String("config", "conf/dbridge.yaml", "dbridge client config file path")
	update         = flag.Bool("update", false, "treat the statement as an update instead of a query")
)

func main() {
	os.Exit(run())
}

// run carries the exit code back to main so deferred cleanup is not skipped
// on error exits.
func run() int {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Println("usage: dbridgecli [-config path] [-update] <sql>")
		return 1
	}
	sql := flag.Arg(0)

	clientConfigData, err := ioutil.ReadFile(*configFilePath)
	if err != nil {
		fmt.Printf("read config file error: %v\n", err)
		return 1
	}

	clientCfg, err := config.UnmarshalClientConfig(clientConfigData)
	if err != nil {
		fmt.Printf("parse config file error: %v\n", err)
		return 1
	}

	if err := logutil.InitLogger(clientCfg.Log.Level); err != nil {
		fmt.Printf("init logger error: %v\n", err)
		return 1
	}

	metrics.RegisterClientMetrics()

	conn, err := db.Connect(clientCfg.URL, clientCfg.Params())
	if err != nil {
		logutil.BgLogger().Error("connect error", zap.String("url", clientCfg.URL), zap.Error(err))
		return 1
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logutil.BgLogger().Error("close connection error", zap.Error(err))
		}
	}()

	stmt, err := conn.CreateStatement()
	if err != nil {
		logutil.BgLogger().Error("create statement error", zap.Error(err))
		return 1
	}

	if *update {
		return runUpdate(stmt, sql)
	}
	return runQuery(stmt, sql)
}

func runUpdate(stmt *db.Statement, sql string) int {
	result, err := stmt.ExecuteUpdate(sql)
	if err != nil {
		logutil.BgLogger().Error("execute update error", zap.String("sql", sql), zap.Error(err))
		return 1
	}
	fmt.Printf("affected: %d, generated key: %d\n", result.AffectedRows, result.GeneratedKey)
	return 0
}

func runQuery(stmt *db.Statement, sql string) int {
	rs, err := stmt.ExecuteQuery(sql)
	if err != nil {
		logutil.BgLogger().Error("execute query error", zap.String("sql", sql), zap.Error(err))
		return 1
	}

	meta, err := rs.MetaData()
	if err != nil {
		logutil.BgLogger().Error("read metadata error", zap.Error(err))
		return 1
	}

	for i := 1; i <= meta.ColumnCount(); i++ {
		label, _ := meta.ColumnLabel(i)
		if i > 1 {
			fmt.Print("\t")
		}
		fmt.Print(label)
	}
	fmt.Println()

	for {
		ok, err := rs.Next()
		if err != nil {
			logutil.BgLogger().Error("cursor error", zap.Error(err))
			return 1
		}
		if !ok {
			break
		}
		for i := 1; i <= meta.ColumnCount(); i++ {
			cell, err := rs.GetString(i)
			if err != nil {
				logutil.BgLogger().Error("read cell error", zap.Error(err))
				return 1
			}
			if wasNull, _ := rs.WasNull(); wasNull {
				cell = "NULL"
			}
			if i > 1 {
				fmt.Print("\t")
			}
			fmt.Print(cell)
		}
		fmt.Println()
	}
	return 0
}
