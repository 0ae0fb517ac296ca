package sqlinline

const QSelectDocument = `--sql 3f1c2a7e-5b8d-4e21-9c3a-7d6f0b1e4a92
select id, data, created_at, updated_at
from documents
where collection = $1 and id = $2;
`

// QFindDocuments is the prefix of the filtered list query. The store appends
// one predicate per filter and the trailing order clause.
const QFindDocuments = `--sql 8a4e6d10-2c7f-4b93-a5e1-3b9d7c2f6e08
select id, data, created_at, updated_at
from documents
where collection = $1`

const QInsertDocument = `--sql c7d2e9b4-61a3-4f08-8e5d-0a9b4c3d2e71
insert into documents (collection, id, data, created_at, updated_at)
values ($1, $2, $3::jsonb, now(), now())
on conflict (collection, id) do nothing
returning created_at;
`

const QUpdateDocument = `--sql 5e0b9f3c-7a12-4d6e-b4c8-2f1e6a9d3b57
update documents
set data = data || $3::jsonb,
    updated_at = now()
where collection = $1 and id = $2;
`
