package sqlinline

const QInsertUsageEvent = `--sql 7501d0ef-0089-4447-96cd-9a1f6300f375
insert into usage_events (id, user_id, transformation_id, event_type, success, latency_ms, country, created_at)
values (gen_random_uuid(), $1::bigint, nullif($2::text, '')::uuid, $3::text, $4::boolean, $5::int, nullif($6::text, ''), now());
`

const QStatsSummary = `--sql d0708712-8247-4dc8-a85c-4e048ce2acf2
select
    (select count(*) from users),
    count(*) filter (where success),
    count(*) filter (where not success),
    count(*) filter (where created_at > now() - interval '24 hours')
from usage_events
where event_type = 'transform';
`
