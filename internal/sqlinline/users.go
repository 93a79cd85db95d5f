package sqlinline

const QInsertUser = `--sql c6ca9be2-521b-4035-99e8-172530fae7b3
insert into users (email, free_credits_used, paid_credits, created_at, updated_at)
values (nullif($1::text, ''), false, 0, now(), now())
on conflict (email) do nothing
returning id, free_credits_used, paid_credits;
`

const QSelectUserCredits = `--sql 388e4ef6-bd7c-47a0-8384-ce35c6dbbe76
select free_credits_used, paid_credits
from users
where id = $1::bigint
limit 1;
`

const QMarkFreeCreditUsed = `--sql d30c7554-1d5a-42e5-a225-73fac7a021c5
update users
set free_credits_used = true,
    updated_at = now()
where id = $1::bigint
  and free_credits_used = false;
`

const QConsumePaidCredit = `--sql 05652c0c-134b-4a4f-9fc6-8ac616c51e71
update users
set paid_credits = paid_credits - 1,
    updated_at = now()
where id = $1::bigint
  and paid_credits > 0;
`

const QAddPaidCredits = `--sql b21744ef-a58d-4740-953f-74a45d49a7f5
update users
set paid_credits = paid_credits + $2::int,
    updated_at = now()
where id = $1::bigint;
`
