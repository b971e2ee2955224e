// Package corrections 修正表的 sqlite 存储与 YAML 导入
package corrections

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"fortune-backend/internal/bazi"
)

const DefaultDBFileName = "corrections.db"

// ResolvePath 目录或无扩展名的路径补上默认文件名
func ResolvePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return p
	}
	if filepath.Ext(p) == "" {
		return filepath.Join(p, DefaultDBFileName)
	}
	if fi, err := os.Stat(p); err == nil && fi.IsDir() {
		return filepath.Join(p, DefaultDBFileName)
	}
	return p
}

func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS date_corrections (
			year INTEGER NOT NULL,
			month INTEGER NOT NULL,
			day INTEGER NOT NULL,
			year_pillar TEXT NOT NULL,
			month_pillar TEXT NOT NULL,
			day_pillar TEXT NOT NULL,
			PRIMARY KEY (year, month, day)
		);`,
		`CREATE TABLE IF NOT EXISTS hour_windows (
			year INTEGER NOT NULL,
			month INTEGER NOT NULL,
			day INTEGER NOT NULL,
			from_hour INTEGER NOT NULL,
			to_hour INTEGER NOT NULL,
			pillar TEXT NOT NULL,
			PRIMARY KEY (year, month, day, from_hour)
		);`,
		`CREATE TABLE IF NOT EXISTS pillar_corrections (
			kind TEXT NOT NULL,
			year INTEGER NOT NULL,
			month INTEGER NOT NULL,
			day INTEGER NOT NULL DEFAULT 0,
			hour INTEGER NOT NULL DEFAULT 0,
			pillar TEXT NOT NULL,
			PRIMARY KEY (kind, year, month, day, hour)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Load 只读打开数据库并读出修正表
func Load(dbPath string) (*bazi.Corrections, error) {
	dbPath = ResolvePath(dbPath)
	if _, err := os.Stat(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", filepath.ToSlash(dbPath)))
	if err != nil {
		return nil, err
	}
	defer db.Close()

	c := bazi.NewCorrections()

	hours, err := loadHourWindows(db)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT year, month, day, year_pillar, month_pillar, day_pillar FROM date_corrections`)
	if err != nil {
		return nil, fmt.Errorf("读取 date_corrections 失败: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var dc bazi.DateCorrection
		var yp, mp, dp string
		if err := rows.Scan(&dc.Year, &dc.Month, &dc.Day, &yp, &mp, &dp); err != nil {
			return nil, err
		}
		if dc.YearPillar, err = parsePillar(yp); err != nil {
			return nil, err
		}
		if dc.MonthPillar, err = parsePillar(mp); err != nil {
			return nil, err
		}
		if dc.DayPillar, err = parsePillar(dp); err != nil {
			return nil, err
		}
		dc.Hours = hours[dc.Date()]
		c.AddDate(dc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := db.Query(`SELECT kind, year, month, day, hour, pillar FROM pillar_corrections`)
	if err != nil {
		return nil, fmt.Errorf("读取 pillar_corrections 失败: %w", err)
	}
	defer prows.Close()
	for prows.Next() {
		var pc bazi.PillarCorrection
		var p string
		if err := prows.Scan(&pc.Kind, &pc.Year, &pc.Month, &pc.Day, &pc.Hour, &p); err != nil {
			return nil, err
		}
		if pc.Pillar, err = parsePillar(p); err != nil {
			return nil, err
		}
		if err := c.AddPillar(pc); err != nil {
			return nil, err
		}
	}
	if err := prows.Err(); err != nil {
		return nil, err
	}

	return c, nil
}

func loadHourWindows(db *sql.DB) (map[string][]bazi.HourWindow, error) {
	rows, err := db.Query(`SELECT year, month, day, from_hour, to_hour, pillar FROM hour_windows ORDER BY from_hour`)
	if err != nil {
		return nil, fmt.Errorf("读取 hour_windows 失败: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]bazi.HourWindow)
	for rows.Next() {
		var key bazi.DateCorrection
		var w bazi.HourWindow
		var p string
		if err := rows.Scan(&key.Year, &key.Month, &key.Day, &w.From, &w.To, &p); err != nil {
			return nil, err
		}
		if w.Pillar, err = parsePillar(p); err != nil {
			return nil, err
		}
		out[key.Date()] = append(out[key.Date()], w)
	}
	return out, rows.Err()
}

// Write 把修正表整体写入 dbPath：先写临时文件再改名，读方不会看到半成品
func Write(dbPath string, c *bazi.Corrections) (int, error) {
	dbPath = ResolvePath(dbPath)
	if dbPath == "" {
		return 0, fmt.Errorf("未指定输出路径")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return 0, fmt.Errorf("创建输出目录失败: %w", err)
	}

	tmpPath := dbPath + ".tmp"
	_ = os.Remove(tmpPath)

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s", filepath.ToSlash(tmpPath)))
	if err != nil {
		return 0, err
	}
	fail := func(err error) (int, error) {
		_ = db.Close()
		_ = os.Remove(tmpPath)
		return 0, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=OFF;"); err != nil {
		return fail(err)
	}
	if err := EnsureSchema(db); err != nil {
		return fail(err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fail(err)
	}
	written, err := writeRows(tx, c)
	if err != nil {
		_ = tx.Rollback()
		return fail(err)
	}
	if err := tx.Commit(); err != nil {
		return fail(err)
	}
	if err := db.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return 0, err
	}
	if err := os.Rename(tmpPath, dbPath); err != nil {
		_ = os.Remove(tmpPath)
		return 0, err
	}
	return written, nil
}

func writeRows(tx *sql.Tx, c *bazi.Corrections) (int, error) {
	dateStmt, err := tx.Prepare(`INSERT OR REPLACE INTO date_corrections (year, month, day, year_pillar, month_pillar, day_pillar) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer dateStmt.Close()

	hourStmt, err := tx.Prepare(`INSERT OR REPLACE INTO hour_windows (year, month, day, from_hour, to_hour, pillar) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer hourStmt.Close()

	pillarStmt, err := tx.Prepare(`INSERT OR REPLACE INTO pillar_corrections (kind, year, month, day, hour, pillar) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer pillarStmt.Close()

	written := 0
	for _, dc := range c.Dates() {
		if _, err := dateStmt.Exec(dc.Year, dc.Month, dc.Day, dc.YearPillar.String(), dc.MonthPillar.String(), dc.DayPillar.String()); err != nil {
			return 0, fmt.Errorf("写入 %s 失败: %w", dc.Date(), err)
		}
		written++
		for _, w := range dc.Hours {
			if _, err := hourStmt.Exec(dc.Year, dc.Month, dc.Day, w.From, w.To, w.Pillar.String()); err != nil {
				return 0, fmt.Errorf("写入 %s 时辰修正失败: %w", dc.Date(), err)
			}
			written++
		}
	}
	for _, pc := range c.Pillars() {
		if _, err := pillarStmt.Exec(pc.Kind, pc.Year, pc.Month, pc.Day, pc.Hour, pc.Pillar.String()); err != nil {
			return 0, fmt.Errorf("写入单柱修正失败: %w", err)
		}
		written++
	}
	return written, nil
}

func parsePillar(s string) (bazi.Pillar, error) {
	p, ok := bazi.ParsePillar(strings.TrimSpace(s))
	if !ok {
		return bazi.Pillar{}, fmt.Errorf("无效的干支: %q", s)
	}
	return p, nil
}
