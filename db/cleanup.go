package db

import (
	"database/sql"
	"fmt"
	"strings"

	sb "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

// LIKE treats % and _ as wildcards but the denylist matches literally, so
// patterns are escaped to keep deletion semantics identical to the sync
// filter's substring containment.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// DeleteExcluded removes every record whose username matches one of the
// denylist patterns, using the same case-insensitive substring semantics as
// the sync-time exclusion filter. Returns the number of rows deleted.
func DeleteExcluded(database string, denylist []string) (int64, error) {
	db, err := connection(database)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	return deleteExcluded(db, denylist)
}

func deleteExcluded(db *sql.DB, denylist []string) (int64, error) {
	if len(denylist) == 0 {
		return 0, nil
	}

	deleteContents := sb.NewDeleteBuilder()
	deleteContents.DeleteFrom("contents")

	conditions := make([]string, 0, len(denylist))
	for _, pattern := range denylist {
		escaped := "%" + likeEscaper.Replace(strings.ToLower(pattern)) + "%"
		conditions = append(conditions, fmt.Sprintf(`lower(username) LIKE %s ESCAPE '\'`, deleteContents.Var(escaped)))
	}
	deleteContents.Where(deleteContents.Or(conditions...))

	sql, args := deleteContents.BuildWithFlavor(sb.Flavor(sb.SQLite))

	log.WithFields(log.Fields{
		"sql":  sql,
		"args": args,
	}).Info("Deleting denylisted contents")

	res, err := db.Exec(sql, args...)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
