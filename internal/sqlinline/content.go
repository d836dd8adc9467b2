package sqlinline

import "github.com/lib/pq"

const cacheColumns = "fingerprint, content_type, payload, payload_type, original_prompt, topic_id, aspect_ratio, grade_level, effect_id, gradient_id, generation_ms, created_at, last_used_at, usage_count"

// QCacheGetAndTouch reads one entry by fingerprint while bumping its usage
// bookkeeping in the same statement. No row means a cache miss.
func QCacheGetAndTouch(table string) string {
	return `--sql 695b65af-f036-4e7f-8dac-5d6e820a4939
update ` + pq.QuoteIdentifier(table) + `
set usage_count = usage_count + 1, last_used_at = now()
where fingerprint = $1
returning ` + cacheColumns + `;
`
}

// QCacheUpsert inserts an entry. On fingerprint conflict only bookkeeping is
// refreshed, with one exception: a real image replaces a stored gradient
// placeholder, so fallbacks written during an outage get upgraded.
func QCacheUpsert(table string) string {
	return `--sql 2e492b50-6182-4401-b18c-d44ec5db006c
insert into ` + pq.QuoteIdentifier(table) + ` as c (` + cacheColumns + `)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now(), 1)
on conflict (fingerprint) do update
set payload       = case when c.payload_type = 'gradient' and excluded.payload_type <> 'gradient' then excluded.payload else c.payload end,
    payload_type  = case when c.payload_type = 'gradient' and excluded.payload_type <> 'gradient' then excluded.payload_type else c.payload_type end,
    effect_id     = case when c.payload_type = 'gradient' and excluded.payload_type <> 'gradient' then excluded.effect_id else c.effect_id end,
    gradient_id   = case when c.payload_type = 'gradient' and excluded.payload_type <> 'gradient' then excluded.gradient_id else c.gradient_id end,
    generation_ms = case when c.payload_type = 'gradient' and excluded.payload_type <> 'gradient' then excluded.generation_ms else c.generation_ms end,
    last_used_at  = now();
`
}

// QCacheDeleteOlderThan prunes rows created before the cutoff, regardless of
// how often they were used.
func QCacheDeleteOlderThan(table string) string {
	return `--sql cb5a0be2-3549-4665-9915-5e619ee72032
delete from ` + pq.QuoteIdentifier(table) + `
where created_at < $1;
`
}

// QCacheCount reports the number of rows in a cache table.
func QCacheCount(table string) string {
	return `--sql 4a3aaa59-df34-4287-9178-74501268b4f1
select count(*) from ` + pq.QuoteIdentifier(table) + `;
`
}

// QCacheListTopicIDs lists the distinct topics with entries of a content type.
const QCacheListTopicIDs = `--sql ea592fdf-5065-42fa-a4fc-531c09dcfbc6
select distinct topic_id
from content_cache
where content_type = $1 and topic_id <> ''
order by topic_id asc;
`
