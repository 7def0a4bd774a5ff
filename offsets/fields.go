package offsets

// Fields read by the resolvers. The names follow the game's schema dump.
var (
	EntityHealth    = Field{"C_BaseEntity", "m_iHealth"}
	EntityTeam      = Field{"C_BaseEntity", "m_iTeamNum"}
	EntityFlags     = Field{"C_BaseEntity", "m_fFlags"}
	EntitySceneNode = Field{"C_BaseEntity", "m_pGameSceneNode"}

	ControllerPawn       = Field{"CBasePlayerController", "m_hPawn"}
	ControllerName       = Field{"CBasePlayerController", "m_iszPlayerName"}
	ControllerPlayerPawn = Field{"CCSPlayerController", "m_hPlayerPawn"}
	ControllerPawnAlive  = Field{"CCSPlayerController", "m_bPawnIsAlive"}

	PawnOldOrigin        = Field{"C_BasePlayerPawn", "m_vOldOrigin"}
	PawnCameraServices   = Field{"C_BasePlayerPawn", "m_pCameraServices"}
	PawnObserverServices = Field{"C_BasePlayerPawn", "m_pObserverServices"}
	PawnCameraPos        = Field{"C_CSPlayerPawnBase", "m_vecLastClipCameraPos"}
	PawnEyeAngles        = Field{"C_CSPlayerPawnBase", "m_angEyeAngles"}
	PawnClippingWeapon   = Field{"C_CSPlayerPawnBase", "m_pClippingWeapon"}
	PawnCrosshairIndex   = Field{"C_CSPlayerPawnBase", "m_iIDEntIndex"}
	PawnSpottedState     = Field{"C_CSPlayerPawnBase", "m_entitySpottedState"}
	PawnArmor            = Field{"C_CSPlayerPawnBase", "m_ArmorValue"}
	PawnShotsFired       = Field{"C_CSPlayerPawnBase", "m_iShotsFired"}
	PawnAimPunchCache    = Field{"C_CSPlayerPawn", "m_aimPunchCache"}

	SpottedByMask = Field{"EntitySpottedState_t", "m_bSpottedByMask"}
	CameraFOV     = Field{"CCSPlayerBase_CameraServices", "m_iFOVStart"}

	SceneNodeOrigin    = Field{"CGameSceneNode", "m_vecAbsOrigin"}
	SkeletonModel      = Field{"CSkeletonInstance", "m_modelState"}
	ModelStateBones    = Field{"CModelState", "m_boneArray"}
	InstanceIdentity   = Field{"CEntityInstance", "m_pEntity"}
	IdentityDesigner   = Field{"CEntityIdentity", "m_designerName"}
	WeaponVData        = Field{"C_BasePlayerWeapon", "m_pVData"}
	WeaponClip         = Field{"C_BasePlayerWeapon", "m_iClip1"}
	WeaponVDataMaxClip = Field{"CBasePlayerWeaponVData", "m_iMaxClip1"}

	PlantedC4Site = Field{"C_PlantedC4", "m_nBombSite"}
)

// Signature names understood by game discovery
const (
	SigEntityList      = "dwEntityList"
	SigLocalController = "dwLocalPlayerController"
	SigLocalPawn       = "dwLocalPlayerPawn"
	SigPlantedC4       = "dwPlantedC4"
	SigViewAngles      = "dwViewAngles"
	SigViewMatrix      = "dwViewMatrix"
)

// ControllerFields is everything controller resolution touches
var ControllerFields = []Field{
	EntityTeam, ControllerName, ControllerPlayerPawn, ControllerPawnAlive,
}

// PawnFields is everything pawn resolution touches
var PawnFields = []Field{
	EntityHealth, EntityTeam, EntityFlags, EntitySceneNode,
	PawnOldOrigin, PawnCameraPos, PawnEyeAngles, PawnClippingWeapon,
	PawnSpottedState, PawnAimPunchCache, SpottedByMask,
	InstanceIdentity, IdentityDesigner, WeaponVData, WeaponClip, WeaponVDataMaxClip,
}

// BombFields is everything the planted bomb decoders touch
var BombFields = []Field{
	PlantedC4Site, EntitySceneNode, SceneNodeOrigin,
}
