package config

var Config *Conf

// Conf is the global configuration of the admin panel
type Conf struct {
	Env          EnvConfig          `toml:"env"`
	Contract     ContractConfig     `toml:"contract"`
	Network      NetworkConfig      `toml:"network"`
	Wallet       WalletConfig       `toml:"wallet"`
	Redis        RedisConfig        `toml:"redis"`
	Mysql        MysqlConfig        `toml:"mysql"`
	Jwt          JwtConfig          `toml:"jwt"`
	DefaultAdmin DefaultAdminConfig `toml:"default_admin"`
	Email        EmailConfig        `toml:"email"`
	Threshold    ThresholdConfig    `toml:"threshold"`
	Events       EventsConfig       `toml:"events"`
	Log          LogConfig          `toml:"log"`
}

type EnvConfig struct {
	Port       string `toml:"port"`
	Version    string `toml:"version"`
	Protocol   string `toml:"protocol"`
	DomainName string `toml:"domain_name"`
	WorkerNum  int    `toml:"worker_num"`
	QueueSize  int    `toml:"queue_size"`
}

// ContractConfig describes the single contract the panel administers.
type ContractConfig struct {
	Address         string   `toml:"address"`
	AbiPath         string   `toml:"abi_path"`
	Functions       []string `toml:"functions"` // operator selection, "*" selects all
	CurrencySymbol  string   `toml:"currency_symbol"`
	CurrencyDecimal int32    `toml:"currency_decimal"`
}

// NetworkConfig is the network the wallet must be on before any write is sent.
type NetworkConfig struct {
	ChainId     uint64 `toml:"chain_id"`
	Name        string `toml:"name"`
	NetUrl      string `toml:"net_url"`
	ExplorerUrl string `toml:"explorer_url"`
}

type WalletConfig struct {
	Mode          string `toml:"mode"` // "rpc" or "keyed"
	RpcUrl        string `toml:"rpc_url"`
	PrivateKeyEnv string `toml:"private_key_env"`
	PollInterval  uint64 `toml:"poll_interval"` // s
}

type RedisConfig struct {
	Address     string `toml:"address"`
	Port        string `toml:"port"`
	Db          int    `toml:"db"`
	Password    string `toml:"password"`
	MaxIdle     int    `toml:"max_idle"`
	MaxActive   int    `toml:"max_active"`
	IdleTimeout int    `toml:"idle_timeout"`
	PanelTTL    int    `toml:"panel_ttl"` // s
}

type MysqlConfig struct {
	Address      string `toml:"address"`
	Port         string `toml:"port"`
	DbName       string `toml:"db_name"`
	UserName     string `toml:"user_name"`
	Password     string `toml:"password"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	MaxLifeTime  int    `toml:"max_life_time"`
}

type JwtConfig struct {
	SecretKey  string `toml:"secret_key"`
	ExpireTime int    `toml:"expire_time"` // duration, s
}

// DefaultAdminConfig holds the operator account. Password is a bcrypt hash.
type DefaultAdminConfig struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

type EmailConfig struct {
	Username string   `toml:"username"`
	Pwd      string   `toml:"pwd"`
	Host     string   `toml:"host"`
	Port     string   `toml:"port"`
	From     string   `toml:"from"`
	Subject  string   `toml:"subject"`
	To       []string `toml:"to"`
	Cc       []string `toml:"cc"`
}

type ThresholdConfig struct {
	ContractBalanceMin string `toml:"contract_balance_min"`
}

// EventsConfig drives the contract event log. WsUrl, when set, is dialled for
// log subscriptions instead of network.net_url.
type EventsConfig struct {
	Enabled      bool   `toml:"enabled"`
	WsUrl        string `toml:"ws_url"`
	StartBlock   uint64 `toml:"start_block"`
	Lookback     uint64 `toml:"lookback"`      // blocks
	PollInterval uint64 `toml:"poll_interval"` // s
	Keep         int    `toml:"keep"`          // events kept in memory without mysql
	Recent       int    `toml:"recent"`        // events shown on the page
}

type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSize    int    `toml:"max_size"` // MB
	MaxBackups int    `toml:"max_backups"`
	MaxAge     int    `toml:"max_age"` // days
}
