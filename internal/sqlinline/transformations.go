package sqlinline

const QInsertTransformation = `--sql 9220bd10-b3f3-416f-b2f5-76983e58501a
insert into transformations (id, user_id, original_image_path, prompt, status, edit_count, created_at, updated_at)
values ($1::uuid, $2::bigint, $3::text, $4::text, 'pending', 0, now(), now());
`

const QMarkTransformationProcessing = `--sql cfd48f4b-47c5-4831-a29f-5ae9ffb48f47
update transformations
set status = 'processing',
    updated_at = now()
where id = $1::uuid;
`

const QCompleteTransformation = `--sql 04411fd2-ef17-405f-acb1-8de3fe0b02f1
update transformations
set status = 'completed',
    transformed_path = $2::text,
    second_transformed_path = nullif($3::text, ''),
    updated_at = now()
where id = $1::uuid;
`

const QFailTransformation = `--sql 9987197a-3f8e-4e9b-9c2e-88902192a6e8
update transformations
set status = 'failed',
    error_message = $2::text,
    updated_at = now()
where id = $1::uuid;
`

const QSelectTransformation = `--sql 83a629ed-9a64-4c3f-9a3c-c67bfbc392ce
select id, user_id, original_image_path, prompt, status,
       coalesce(transformed_path, ''), coalesce(second_transformed_path, ''),
       edit_count, coalesce(error_message, ''), created_at, updated_at
from transformations
where id = $1::uuid
limit 1;
`

const QSelectTransformationEdits = `--sql f40362b1-562d-4d6e-842d-ebd4fe747e16
select edit_count
from transformations
where id = $1::uuid
  and user_id = $2::bigint
limit 1;
`

const QIncrementEditCount = `--sql f7cda27b-a264-45ed-902e-a0362b3c6d76
update transformations
set edit_count = edit_count + 1,
    updated_at = now()
where id = $1::uuid;
`
