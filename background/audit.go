// Package background runs periodic maintenance jobs alongside the server.
package background

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/omerson-cruz/vue-share-backend/config"
)

// likesDriftQuery finds posts whose likes counter disagrees with the number
// of users holding the post in their favorites. The like protocol updates the
// two sides in separate steps, so a crash between them leaves exactly this
// kind of drift behind.
const likesDriftQuery = `
SELECT p.id, p.likes, count(u.id) AS members
FROM posts p
LEFT JOIN users u ON p.id = ANY(u.favorites)
GROUP BY p.id, p.likes
HAVING p.likes <> count(u.id)`

// StartLikesAudit launches the periodic like-counter audit. Each run logs
// every diverged post and, when repair is enabled, resets the counter to the
// favorites membership count. Closing stopChan ends the worker.
func StartLikesAudit(pool *pgxpool.Pool, cfg *config.AuditConfig, stopChan <-chan struct{}) {
	go func() {
		log.Printf("likes audit started (interval %s, repair %t)", cfg.Interval, cfg.Repair)
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-stopChan:
				log.Println("likes audit stopped")
				return
			case <-ticker.C:
				runLikesAudit(pool, cfg.Repair)
			}
		}
	}()
}

func runLikesAudit(pool *pgxpool.Pool, repair bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows, err := pool.Query(ctx, likesDriftQuery)
	if err != nil {
		log.Printf("likes audit query failed: %v", err)
		return
	}
	defer rows.Close()

	type drift struct {
		postID  string
		likes   int
		members int
	}
	var drifted []drift
	for rows.Next() {
		var d drift
		if err := rows.Scan(&d.postID, &d.likes, &d.members); err != nil {
			log.Printf("likes audit scan failed: %v", err)
			return
		}
		drifted = append(drifted, d)
	}
	if err := rows.Err(); err != nil {
		log.Printf("likes audit rows failed: %v", err)
		return
	}

	for _, d := range drifted {
		log.Printf("likes audit: post %s counter is %d but %d users hold it as favorite", d.postID, d.likes, d.members)
		if !repair {
			continue
		}
		if _, err := pool.Exec(ctx, `UPDATE posts SET likes = $2 WHERE id = $1`, d.postID, d.members); err != nil {
			log.Printf("likes audit repair failed for post %s: %v", d.postID, err)
			continue
		}
		log.Printf("likes audit: repaired post %s counter to %d", d.postID, d.members)
	}
}
